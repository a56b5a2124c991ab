package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain"
)

func price(v int64) domain.PriceResult {
	return domain.PriceResult{Symbol: "test", Price: decimal.NewFromInt(v), Currency: "CNY"}
}

func TestSetThenGet(t *testing.T) {
	c := New(TTLCurrentPrice)

	c.Set("cn:sh600519", price(1700))

	got, ok := c.Get("cn:sh600519")
	require.True(t, ok)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(1700)))
}

func TestMissForUnknownKey(t *testing.T) {
	c := New(TTLCurrentPrice)

	_, ok := c.Get("cn:sh600519")
	assert.False(t, ok)
}

func TestExpiredEntryIsMissButStaysInPlace(t *testing.T) {
	c := New(10 * time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", price(1))

	// One second short of the TTL: still fresh.
	c.now = func() time.Time { return base.Add(10*time.Minute - time.Second) }
	_, ok := c.Get("k")
	assert.True(t, ok)

	// At the TTL boundary: a miss, not an error.
	c.now = func() time.Time { return base.Add(10 * time.Minute) }
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "stale entries are overwritten, not evicted")

	// The next Set supersedes the stale entry.
	c.Set("k", price(2))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 1, c.Len())
}

func TestSetOverwrites(t *testing.T) {
	c := New(TTLCurrentPrice)

	c.Set("k", price(1))
	c.Set("k", price(2))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(2)))
}

func TestClear(t *testing.T) {
	c := New(TTLCurrentPrice)

	c.Set("a", price(1))
	c.Set("b", price(2))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
