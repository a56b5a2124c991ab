package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain"
)

type stubSource struct {
	calls int
	rate  float64
	err   error
}

func (s *stubSource) GetRate(_ context.Context, _, _ string) (float64, error) {
	s.calls++
	return s.rate, s.err
}

func TestConvertIdentity(t *testing.T) {
	source := &stubSource{err: errors.New("should not be called")}
	c := NewConverter(source, zerolog.Nop())

	for _, amount := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromFloat(123.456),
		decimal.NewFromInt(-50),
	} {
		got, err := c.Convert(context.Background(), amount, "CNY", "CNY")
		require.NoError(t, err)
		assert.True(t, got.Equal(amount))
	}
	assert.Equal(t, 0, source.calls)
}

func TestConvertUsesLiveRate(t *testing.T) {
	c := NewConverter(&stubSource{rate: 7.25}, zerolog.Nop())

	got, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "CNY")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(725)), "got %s", got)
}

func TestGetRateCachesLiveRate(t *testing.T) {
	source := &stubSource{rate: 7.25}
	c := NewConverter(source, zerolog.Nop())

	_, err := c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)
	_, err = c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "second lookup must come from cache")
}

func TestGetRateCacheExpires(t *testing.T) {
	source := &stubSource{rate: 7.25}
	c := NewConverter(source, zerolog.Nop())

	base := time.Now()
	c.now = func() time.Time { return base }
	_, err := c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(time.Hour) }
	_, err = c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
}

func TestGetRateFallsBackWhenLiveFails(t *testing.T) {
	source := &stubSource{err: errors.New("api down")}
	c := NewConverter(source, zerolog.Nop())

	rate, err := c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)
	assert.Equal(t, 7.25, rate)

	// The fallback hit is cached like a live rate.
	_, err = c.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestGetRateUnavailable(t *testing.T) {
	// Live source dead and the pair is outside the fallback table:
	// must fail, never default to 1.
	c := NewConverter(&stubSource{err: errors.New("api down")}, zerolog.Nop())

	_, err := c.GetRate(context.Background(), "JPY", "CNY")
	assert.ErrorIs(t, err, domain.ErrConversionUnavailable)
}

func TestGetRateRejectsNonPositiveLiveRate(t *testing.T) {
	// A zero live rate is a failure, handled via fallback.
	c := NewConverter(&stubSource{rate: 0}, zerolog.Nop())

	rate, err := c.GetRate(context.Background(), "HKD", "CNY")
	require.NoError(t, err)
	assert.Equal(t, 0.93, rate)
}
