package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/quickbasket/api/internal/jobs"
	"github.com/quickbasket/api/internal/platform/observability"
	"github.com/quickbasket/api/internal/reports"
)

func main() {
	sourceDir := flag.String("source", "data/sources", "directory containing raw price JSON files")
	reportsDir := flag.String("reports", "data/reports", "directory to write report artifacts to")
	workers := flag.Int("workers", 4, "number of concurrent source readers")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("aggregate")

	store, err := reports.NewStore(*reportsDir)
	if err != nil {
		logger.Fatal("failed to initialise report store", zap.Error(err))
	}

	job, err := jobs.NewAggregationJob(jobs.AggregationJobDeps{
		SourceDir:   *sourceDir,
		Reports:     store,
		Logger:      logger,
		Concurrency: *workers,
	})
	if err != nil {
		logger.Fatal("failed to initialise aggregation job", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := job.Run(ctx)
	if err != nil {
		logger.Fatal("aggregation run failed", zap.Error(err))
	}

	logger.Info("aggregation run complete",
		zap.Int("sourcesRead", summary.SourcesRead),
		zap.Int("sourcesSkipped", summary.SourcesSkipped),
		zap.Int("products", summary.Products),
		zap.Int("stores", summary.Stores),
		zap.Duration("duration", summary.Duration),
	)
}
