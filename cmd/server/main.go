// Package main is the entry point for the net-worth tracker service.
// It wires the quote clients, caches, valuation engine and HTTP API,
// starts the FX warm-up scheduler, and waits for a shutdown signal.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"networth/internal/cache"
	"networth/internal/clients/alphavantage"
	"networth/internal/clients/coingecko"
	"networth/internal/clients/exchangerate"
	"networth/internal/clients/tencent"
	"networth/internal/config"
	"networth/internal/database"
	"networth/internal/fx"
	"networth/internal/history"
	"networth/internal/ledger"
	"networth/internal/quotes"
	"networth/internal/scheduler"
	"networth/internal/server"
	"networth/internal/valuation"
	"networth/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("base_currency", cfg.BaseCurrency).Msg("Starting networth")

	// Ledger database
	ledgerDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "ledger.db"),
		Name: "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	repo, err := ledger.NewRepository(ledgerDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger repository")
	}

	// Quote sources and caches
	priceCache := cache.New(cache.TTLCurrentPrice)
	feedClient := tencent.NewClient(log)
	avClient := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
	coinClient := coingecko.NewClient(log)

	registry := quotes.NewRegistry(
		quotes.NewDomesticEquityAdapter(feedClient, avClient, priceCache, log),
		quotes.NewCrossBorderEquityAdapter(feedClient, avClient, priceCache, log),
		quotes.NewDigitalAssetAdapter(coinClient, priceCache, log),
	)

	converter := fx.NewConverter(exchangerate.NewClient(log), log)

	aggregator := valuation.NewAggregator(registry, converter, log)
	aggregator.SetPositionDelay(cfg.PositionDelay)

	synthesizer := history.NewSynthesizer(aggregator, log)

	// Background FX warm-up
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RateSyncSchedule, scheduler.NewRateSyncJob(converter, cfg.BaseCurrency, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rate sync job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:         cfg.Port,
		BaseCurrency: cfg.BaseCurrency,
		Log:          log,
		Repo:         repo,
		Aggregator:   aggregator,
		Synthesizer:  synthesizer,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
