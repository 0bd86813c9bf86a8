package pricing

import (
	"math"
	"strings"

	"github.com/quickbasket/api/internal/domain"
)

// Aggregator folds normalized observations into per-product price records
// and a per-store stat table. It is not safe for concurrent use; parallel
// pipelines aggregate one source each and Merge once all sources finish.
type Aggregator struct {
	observations map[string][]domain.PriceObservation
}

// NewAggregator constructs an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{observations: make(map[string][]domain.PriceObservation)}
}

// Add folds one observation under the given logical product name. Observations
// with a missing store or a non-finite price are skipped.
func (a *Aggregator) Add(productName string, obs domain.PriceObservation) {
	if a == nil {
		return
	}
	name := strings.TrimSpace(productName)
	if name == "" {
		name = strings.TrimSpace(obs.ProductName)
	}
	if name == "" {
		return
	}
	if strings.TrimSpace(obs.Store) == "" {
		return
	}
	if math.IsNaN(obs.Price) || math.IsInf(obs.Price, 0) || obs.Price < 0 {
		return
	}
	a.observations[name] = append(a.observations[name], obs)
}

// AddAll folds every observation under its own product name.
func (a *Aggregator) AddAll(observations []domain.PriceObservation) {
	for _, obs := range observations {
		a.Add(obs.ProductName, obs)
	}
}

// Merge absorbs another aggregator's observations. Used to combine per-file
// results after all parallel aggregations complete.
func (a *Aggregator) Merge(other *Aggregator) {
	if a == nil || other == nil {
		return
	}
	for name, observations := range other.observations {
		a.observations[name] = append(a.observations[name], observations...)
	}
}

// Records computes the published per-product records. Extrema accumulate from
// +Inf / 0 via comparison scans and the average is the plain arithmetic mean
// over all observations; products with zero qualifying observations are not
// emitted.
func (a *Aggregator) Records() map[string]domain.ProductPriceRecord {
	if a == nil {
		return map[string]domain.ProductPriceRecord{}
	}

	records := make(map[string]domain.ProductPriceRecord, len(a.observations))
	for name, observations := range a.observations {
		if len(observations) == 0 {
			continue
		}

		lowest := math.Inf(1)
		highest := 0.0
		sum := 0.0
		byStore := make(map[string][]domain.PriceObservation)
		kept := make([]domain.PriceObservation, len(observations))
		copy(kept, observations)

		for _, obs := range kept {
			if obs.Price < lowest {
				lowest = obs.Price
			}
			if obs.Price > highest {
				highest = obs.Price
			}
			sum += obs.Price
			byStore[obs.Store] = append(byStore[obs.Store], obs)
		}

		records[name] = domain.ProductPriceRecord{
			Name:         name,
			Observations: kept,
			LowestPrice:  lowest,
			HighestPrice: highest,
			AveragePrice: sum / float64(len(kept)),
			ByStore:      byStore,
		}
	}
	return records
}

// StoreStats derives the per-store rollup from the current observations.
// A store's product count increments once per product it appears in, and its
// lowest-price count increments once per product where it ties the minimum.
func (a *Aggregator) StoreStats() map[string]domain.StoreStat {
	stats := make(map[string]domain.StoreStat)
	for _, record := range a.Records() {
		for store, observations := range record.ByStore {
			stat := stats[store]
			stat.Name = store
			stat.ProductCount++
			for _, obs := range observations {
				if obs.Price == record.LowestPrice {
					stat.LowestPriceCount++
					break
				}
			}
			stats[store] = stat
		}
	}
	return stats
}
