package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain"
)

func TestGetRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"CNY":7.25,"HKD":7.8,"EUR":0.93}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "CNY")
	require.NoError(t, err)
	assert.Equal(t, 7.25, rate)
}

func TestGetRateIdentity(t *testing.T) {
	// Same currency never hits the network.
	client := NewClientWithBaseURL("http://127.0.0.1:0", zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "CNY", "CNY")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestGetRateMissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.93}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, err := client.GetRate(context.Background(), "USD", "JPY")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGetRateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, err := client.GetRate(context.Background(), "USD", "CNY")
	assert.Error(t, err)
}

func TestGetRateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, err := client.GetRate(context.Background(), "USD", "CNY")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}
