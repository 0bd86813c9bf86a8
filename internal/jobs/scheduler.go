package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler re-runs the aggregation job on a cron cadence inside the API
// server, so report artifacts stay fresh without an operator re-running the
// batch by hand.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers the job under the given cron spec (e.g. "@hourly").
func NewScheduler(spec string, job *AggregationJob, logger *zap.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("scheduler: cron spec is required")
	}
	if job == nil {
		return nil, errors.New("scheduler: aggregation job is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			logger.Error("scheduler: aggregation run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, errors.New("scheduler: invalid cron spec: " + spec)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins scheduling in a background goroutine.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.logger.Info("scheduler: started")
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
}
