package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/quickbasket/api/internal/domain"
)

// RankBestStores selects, per product, the stores holding the lowest
// available price. Unavailable stores are excluded even when they tie the
// floor price. Records whose lowest price never left +Inf are skipped.
func RankBestStores(records map[string]domain.ProductPriceRecord) map[string]domain.BestStoreReport {
	reports := make(map[string]domain.BestStoreReport, len(records))
	for name, record := range records {
		if math.IsInf(record.LowestPrice, 1) {
			continue
		}

		seen := make(map[string]struct{})
		best := make([]string, 0, 2)
		for _, obs := range record.Observations {
			if !obs.Available || obs.Price != record.LowestPrice {
				continue
			}
			if _, ok := seen[obs.Store]; ok {
				continue
			}
			seen[obs.Store] = struct{}{}
			best = append(best, obs.Store)
		}
		sort.Strings(best)

		reports[name] = domain.BestStoreReport{
			Product:          name,
			LowestPrice:      record.LowestPrice,
			HighestPrice:     record.HighestPrice,
			BestStores:       best,
			PotentialSavings: savingsPercent(record.LowestPrice, record.HighestPrice),
		}
	}
	return reports
}

// savingsPercent guards the division so a zero highest price yields the
// sentinel instead of NaN propagating into the report artifacts.
func savingsPercent(lowest, highest float64) string {
	if highest == 0 {
		return domain.SavingsUnavailable
	}
	return fmt.Sprintf("%.2f%%", (highest-lowest)/highest*100)
}

// Leaderboard sorts stores descending by lowest-price wins. Stores that
// contributed no comparable products are excluded entirely.
func Leaderboard(stats map[string]domain.StoreStat) []domain.StoreSummary {
	summaries := make([]domain.StoreSummary, 0, len(stats))
	for _, stat := range stats {
		if stat.ProductCount == 0 {
			continue
		}
		summaries = append(summaries, domain.StoreSummary{
			Name:                  stat.Name,
			ProductCount:          stat.ProductCount,
			LowestPriceCount:      stat.LowestPriceCount,
			LowestPricePercentage: float64(stat.LowestPriceCount) / float64(stat.ProductCount) * 100,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LowestPriceCount != summaries[j].LowestPriceCount {
			return summaries[i].LowestPriceCount > summaries[j].LowestPriceCount
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}
