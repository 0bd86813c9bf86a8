package jobs

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quickbasket/api/internal/ingest"
	"github.com/quickbasket/api/internal/pricing"
	"github.com/quickbasket/api/internal/reports"
)

const defaultAggregationConcurrency = 4

// AggregationJobDeps wires the inputs of the batch aggregation job.
type AggregationJobDeps struct {
	SourceDir   string
	Reports     *reports.Store
	Logger      *zap.Logger
	Concurrency int
	Clock       func() time.Time
}

// AggregationSummary describes one completed run.
type AggregationSummary struct {
	SourcesRead    int
	SourcesSkipped int
	Products       int
	Stores         int
	StartedAt      time.Time
	Duration       time.Duration
}

// AggregationJob turns the ingestion files under SourceDir into the four
// durable report artifacts. Runs are idempotent and rerunnable; a failing
// source is logged and skipped, never aborting the batch.
type AggregationJob struct {
	sourceDir   string
	reports     *reports.Store
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// NewAggregationJob validates dependencies and constructs the job.
func NewAggregationJob(deps AggregationJobDeps) (*AggregationJob, error) {
	if deps.SourceDir == "" {
		return nil, errors.New("aggregation job: source directory is required")
	}
	if deps.Reports == nil {
		return nil, errors.New("aggregation job: report store is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultAggregationConcurrency
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &AggregationJob{
		sourceDir:   deps.SourceDir,
		reports:     deps.Reports,
		logger:      logger,
		concurrency: concurrency,
		now:         func() time.Time { return clock().UTC() },
	}, nil
}

// Run executes one aggregation pass. Independent source files are processed
// in parallel into per-file aggregators; the output maps are merged only
// after every file completes.
func (j *AggregationJob) Run(ctx context.Context) (AggregationSummary, error) {
	if j == nil {
		return AggregationSummary{}, errors.New("aggregation job: not initialised")
	}

	started := j.now()
	files, err := ingest.ListSourceFiles(j.sourceDir)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			j.logger.Warn("aggregation: source directory absent; skipping run",
				zap.String("dir", j.sourceDir))
			return AggregationSummary{StartedAt: started}, nil
		}
		return AggregationSummary{}, err
	}

	var (
		mu       sync.Mutex
		partials []*pricing.Aggregator
		skipped  int
		read     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			file, err := ingest.ReadProductFile(path, j.logger)
			if err != nil {
				// One bad source must not abort the batch.
				j.logger.Warn("aggregation: skipping source",
					zap.String("file", path), zap.Error(err))
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			partial := pricing.NewAggregator()
			partial.AddAll(pricing.NormalizeBatch(file.Offers, j.logger))

			mu.Lock()
			partials = append(partials, partial)
			read++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AggregationSummary{}, err
	}

	merged := pricing.NewAggregator()
	for _, partial := range partials {
		merged.Merge(partial)
	}

	records := merged.Records()
	stats := merged.StoreStats()
	artifacts := reports.Artifacts{
		PriceComparison: records,
		StoreStats:      stats,
		StoreSummary:    pricing.Leaderboard(stats),
		BestStores:      pricing.RankBestStores(records),
	}
	if err := j.reports.WriteAll(artifacts); err != nil {
		return AggregationSummary{}, err
	}

	summary := AggregationSummary{
		SourcesRead:    read,
		SourcesSkipped: skipped,
		Products:       len(records),
		Stores:         len(stats),
		StartedAt:      started,
		Duration:       j.now().Sub(started),
	}
	j.logger.Info("aggregation: run completed",
		zap.Int("sources_read", summary.SourcesRead),
		zap.Int("sources_skipped", summary.SourcesSkipped),
		zap.Int("products", summary.Products),
		zap.Int("stores", summary.Stores),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
