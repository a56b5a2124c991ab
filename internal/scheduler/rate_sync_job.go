package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"networth/internal/fx"
)

// trackedCurrencies is the closed set the tracker deals in.
var trackedCurrencies = []string{"CNY", "USD", "HKD", "EUR"}

// RateSyncJob warms the FX cache so valuations during the next cache
// window never block on a live rate fetch. Partial failure is logged;
// the job fails only when every pair fails.
type RateSyncJob struct {
	converter *fx.Converter
	base      string
	log       zerolog.Logger
}

// NewRateSyncJob creates a new rate sync job
func NewRateSyncJob(converter *fx.Converter, baseCurrency string, log zerolog.Logger) *RateSyncJob {
	return &RateSyncJob{
		converter: converter,
		base:      baseCurrency,
		log:       log.With().Str("job", "rate_sync").Logger(),
	}
}

// Name implements Job
func (j *RateSyncJob) Name() string { return "rate_sync" }

// Run implements Job
func (j *RateSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	successCount := 0
	errorCount := 0

	for _, from := range trackedCurrencies {
		if from == j.base {
			continue
		}

		rate, err := j.converter.GetRate(ctx, from, j.base)
		if err != nil {
			j.log.Error().
				Err(err).
				Str("from", from).
				Str("to", j.base).
				Msg("Failed to warm rate")
			errorCount++
			continue
		}

		j.log.Debug().
			Str("from", from).
			Str("to", j.base).
			Float64("rate", rate).
			Msg("Warmed exchange rate")
		successCount++
	}

	j.log.Info().
		Int("success", successCount).
		Int("errors", errorCount).
		Msg("Exchange rate sync completed")

	if successCount == 0 && errorCount > 0 {
		return fmt.Errorf("all rate fetches failed")
	}
	return nil
}
