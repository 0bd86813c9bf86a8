package reports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/quickbasket/api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Artifact file names published by the aggregation batch. Consumers treat
// the map-shaped files as maps; key ordering is not guaranteed.
const (
	PriceComparisonFile = "price_comparison.json"
	StoreStatsFile      = "store_stats.json"
	StoreSummaryFile    = "store_summary.json"
	BestStoresFile      = "best_stores.json"
)

// ErrNotAvailable indicates the requested artifact has not been produced yet.
var ErrNotAvailable = errors.New("reports: artifact not available")

// Artifacts bundles one aggregation run's published outputs.
type Artifacts struct {
	PriceComparison map[string]domain.ProductPriceRecord
	StoreStats      map[string]domain.StoreStat
	StoreSummary    []domain.StoreSummary
	BestStores      map[string]domain.BestStoreReport
}

// Store persists the durable JSON artifacts under a single directory. Writes
// go through a temp file and rename so readers never observe a partial file.
type Store struct {
	dir string
}

// NewStore validates the artifact directory and constructs a Store, creating
// the directory when absent.
func NewStore(dir string) (*Store, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, errors.New("reports: directory is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("reports: create directory: %w", err)
	}
	return &Store{dir: trimmed}, nil
}

// WriteAll publishes every artifact of one aggregation run.
func (s *Store) WriteAll(artifacts Artifacts) error {
	if s == nil {
		return errors.New("reports: store not initialised")
	}
	if err := s.writeJSON(PriceComparisonFile, artifacts.PriceComparison); err != nil {
		return err
	}
	if err := s.writeJSON(StoreStatsFile, artifacts.StoreStats); err != nil {
		return err
	}
	if err := s.writeJSON(StoreSummaryFile, artifacts.StoreSummary); err != nil {
		return err
	}
	return s.writeJSON(BestStoresFile, artifacts.BestStores)
}

// PriceComparison reads back the per-product comparison map.
func (s *Store) PriceComparison() (map[string]domain.ProductPriceRecord, error) {
	out := make(map[string]domain.ProductPriceRecord)
	if err := s.readJSON(PriceComparisonFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreStats reads back the per-store rollup.
func (s *Store) StoreStats() (map[string]domain.StoreStat, error) {
	out := make(map[string]domain.StoreStat)
	if err := s.readJSON(StoreStatsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreSummary reads back the sorted leaderboard.
func (s *Store) StoreSummary() ([]domain.StoreSummary, error) {
	out := make([]domain.StoreSummary, 0)
	if err := s.readJSON(StoreSummaryFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BestStores reads back the per-product best-store reports.
func (s *Store) BestStores() (map[string]domain.BestStoreReport, error) {
	out := make(map[string]domain.BestStoreReport)
	if err := s.readJSON(BestStoresFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) writeJSON(name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("reports: encode %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("reports: stage %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("reports: stage %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("reports: stage %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("reports: publish %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(name string, target any) error {
	if s == nil {
		return errors.New("reports: store not initialised")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotAvailable, name)
		}
		return fmt.Errorf("reports: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("reports: decode %s: %w", name, err)
	}
	return nil
}
