package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/analytics"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/config"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/export"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/logger"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/pipeline"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/repository/clickhouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	stages, err := analytics.ParseStages(cfg.Pipeline.FunnelStages)
	if err != nil {
		log.Fatal("Invalid funnel definition", zap.Error(err))
	}

	log.Info("Starting analytics pipeline",
		zap.String("environment", cfg.Service.Environment),
		zap.String("funnel", cfg.Pipeline.FunnelStages),
		zap.String("output_dir", cfg.Pipeline.OutputDir))

	ctx := context.Background()

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log)

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	writer := export.NewWriter(cfg.Pipeline.OutputDir, log)

	p := pipeline.New(repo, writer, stages, log)

	result, err := p.Run(ctx)
	if err != nil {
		log.Fatal("Pipeline run failed", zap.Error(err))
	}

	// Violations are a quality signal for the orchestration layer, not a
	// failure of this run.
	if len(result.Violations) > 0 {
		log.Warn("Funnel invariant check reported violations",
			zap.Int("count", len(result.Violations)))
	}
}
