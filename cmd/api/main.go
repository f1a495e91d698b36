package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caseylessard/hilljump-sub001/internal/api/handlers"
	"github.com/caseylessard/hilljump-sub001/internal/api/router"
	"github.com/caseylessard/hilljump-sub001/internal/infra/database/postgres"
	"github.com/caseylessard/hilljump-sub001/internal/pkg/config"
	"github.com/caseylessard/hilljump-sub001/internal/pkg/logger"
	"github.com/caseylessard/hilljump-sub001/internal/service/dripsync"
)

const (
	serviceName    = "hilljump-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", serviceVersion).Msg("Starting hilljump API server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Repositories
	tickerRepo := postgres.NewTickerRepository(dbPool)
	priceRepo := postgres.NewPriceRepository(dbPool)
	distRepo := postgres.NewDistributionRepository(dbPool)
	resultRepo := postgres.NewResultRepository(dbPool)

	// DRIP service
	svcConfig := dripsync.DefaultConfig()
	svcConfig.MaxConcurrent = cfg.Drip.MaxConcurrent
	svcConfig.LookbackDays = cfg.Drip.LookbackDays
	svcConfig.CacheTTL = cfg.Drip.CacheTTL
	svcConfig.Options.PayOffsetDays = cfg.Drip.PayOffsetDays
	svcConfig.Options.UseBusinessDays = cfg.Drip.UseBusinessDays
	svcConfig.Options.TaxWithholdRate = cfg.Drip.TaxWithholdRate

	dripService := dripsync.NewService(svcConfig, tickerRepo, priceRepo, distRepo, resultRepo)

	// Handlers and router
	handler := router.NewRouter(&router.Config{
		DripHandler:   handlers.NewDripHandler(dripService, resultRepo),
		HealthHandler: handlers.NewHealthHandler(dbPool),
		CORSOrigin:    cfg.Server.CORSOrigin,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("address", addr).Msg("API server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("hilljump API server stopped")
}
