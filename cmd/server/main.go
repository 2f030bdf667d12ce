package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyLexxDramma/deribit-client/internal/api"
	"github.com/pyLexxDramma/deribit-client/internal/config"
	"github.com/pyLexxDramma/deribit-client/internal/db"
	"github.com/pyLexxDramma/deribit-client/internal/external"
	"github.com/pyLexxDramma/deribit-client/internal/logger"
	"github.com/pyLexxDramma/deribit-client/internal/notifications"
	"github.com/pyLexxDramma/deribit-client/internal/repository"
	"github.com/pyLexxDramma/deribit-client/internal/scheduler"
	"github.com/pyLexxDramma/deribit-client/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logger.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("service", cfg.ServiceName).
		Int("api_port", cfg.APIPort).
		Str("deribit", cfg.DeribitBaseURL).
		Int("fetch_interval_s", cfg.FetchIntervalSeconds).
		Msg("starting")

	// Database
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		pool.Close()
		log.Info().Msg("connection pool closed")
	}()

	priceRepo := repository.NewPriceRepo(pool)
	if err := priceRepo.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	deribit := external.NewDeribitClient(cfg.DeribitBaseURL)
	defer deribit.Close()

	notify := notifications.NewSender(cfg.WebhookURL, cfg.ServiceName)
	prices := service.NewPriceService(priceRepo)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, prices, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server error")
			os.Exit(1)
		}
	}()

	// 2. Ingestion scheduler
	sched := scheduler.NewPriceScheduler(deribit, priceRepo, notify, scheduler.PriceSchedulerConfig{
		Interval: time.Duration(cfg.FetchIntervalSeconds) * time.Second,
	})
	sched.Start()

	log.Info().Msg("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API shutdown error")
	}
	log.Info().Msg("shutdown complete")
}
