package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/caseylessard/hilljump-sub001/internal/infra/database/postgres"
	"github.com/caseylessard/hilljump-sub001/internal/pkg/config"
	"github.com/caseylessard/hilljump-sub001/internal/pkg/logger"
	"github.com/caseylessard/hilljump-sub001/internal/service/dripsync"
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
		ServiceName:    "hilljump-compute-drip",
		ServiceVersion: "1.0.0",
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	svcConfig := dripsync.DefaultConfig()
	svcConfig.MaxConcurrent = cfg.Drip.MaxConcurrent
	svcConfig.LookbackDays = cfg.Drip.LookbackDays
	svcConfig.Options.PayOffsetDays = cfg.Drip.PayOffsetDays
	svcConfig.Options.UseBusinessDays = cfg.Drip.UseBusinessDays
	svcConfig.Options.TaxWithholdRate = cfg.Drip.TaxWithholdRate

	svc := dripsync.NewService(
		svcConfig,
		postgres.NewTickerRepository(dbPool),
		postgres.NewPriceRepository(dbPool),
		postgres.NewDistributionRepository(dbPool),
		postgres.NewResultRepository(dbPool),
	)

	report, err := svc.RunBatch(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Batch run failed")
	}

	fmt.Printf("Batch %s: %d processed, %d errored in %s\n",
		report.RunID, report.Processed, report.Errored, report.Duration)

	if report.Errored > 0 {
		os.Exit(1)
	}
}
