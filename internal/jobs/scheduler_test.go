package jobs

import (
	"path/filepath"
	"testing"

	"github.com/quickbasket/api/internal/reports"
)

func TestNewSchedulerValidation(t *testing.T) {
	store, err := reports.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	job, err := NewAggregationJob(AggregationJobDeps{
		SourceDir: filepath.Join(t.TempDir(), "src"),
		Reports:   store,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if _, err := NewScheduler("", job, nil); err == nil {
		t.Fatalf("expected error for empty spec")
	}
	if _, err := NewScheduler("@hourly", nil, nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
	if _, err := NewScheduler("not a cron spec", job, nil); err == nil {
		t.Fatalf("expected error for invalid spec")
	}

	scheduler, err := NewScheduler("@hourly", job, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	scheduler.Start()
	scheduler.Stop()
}
