package pricing

import (
	"math"
	"testing"

	"github.com/quickbasket/api/internal/domain"
)

func TestRankBestStoresSaltScenario(t *testing.T) {
	agg := NewAggregator()
	agg.Add("Salt", obs("JioMart", 24, true))
	agg.Add("Salt", obs("Amazon", 26, true))

	reports := RankBestStores(agg.Records())
	report, ok := reports["Salt"]
	if !ok {
		t.Fatalf("expected Salt report")
	}
	if len(report.BestStores) != 1 || report.BestStores[0] != "JioMart" {
		t.Fatalf("expected best store [JioMart], got %v", report.BestStores)
	}
	if report.PotentialSavings != "7.69%" {
		t.Fatalf("expected savings 7.69%%, got %q", report.PotentialSavings)
	}
}

func TestRankBestStoresExcludesUnavailableAtFloor(t *testing.T) {
	agg := NewAggregator()
	agg.Add("Salt", obs("JioMart", 24, false))
	agg.Add("Salt", obs("Amazon", 24, true))
	agg.Add("Salt", obs("BigBasket", 26, true))

	report := RankBestStores(agg.Records())["Salt"]
	if len(report.BestStores) != 1 || report.BestStores[0] != "Amazon" {
		t.Fatalf("expected only available store at floor price, got %v", report.BestStores)
	}
}

func TestRankBestStoresTiesIncludeAllAvailableStores(t *testing.T) {
	agg := NewAggregator()
	agg.Add("Salt", obs("JioMart", 24, true))
	agg.Add("Salt", obs("Amazon", 24, true))

	report := RankBestStores(agg.Records())["Salt"]
	if len(report.BestStores) != 2 {
		t.Fatalf("expected both tied stores, got %v", report.BestStores)
	}
}

func TestRankBestStoresSkipsInfiniteLowestPrice(t *testing.T) {
	records := map[string]domain.ProductPriceRecord{
		"Ghost": {Name: "Ghost", LowestPrice: math.Inf(1)},
	}
	if reports := RankBestStores(records); len(reports) != 0 {
		t.Fatalf("expected no reports for record without valid observations, got %v", reports)
	}
}

func TestRankBestStoresZeroHighestPriceSentinel(t *testing.T) {
	agg := NewAggregator()
	agg.Add("Freebie", domain.PriceObservation{Store: "JioMart", Price: 0, ProductName: "Freebie", Available: true})

	report := RankBestStores(agg.Records())["Freebie"]
	if report.PotentialSavings != domain.SavingsUnavailable {
		t.Fatalf("expected %q sentinel, got %q", domain.SavingsUnavailable, report.PotentialSavings)
	}
}

func TestLeaderboardOrderingAndExclusion(t *testing.T) {
	stats := map[string]domain.StoreStat{
		"JioMart":   {Name: "JioMart", ProductCount: 10, LowestPriceCount: 7},
		"Amazon":    {Name: "Amazon", ProductCount: 10, LowestPriceCount: 2},
		"BigBasket": {Name: "BigBasket", ProductCount: 8, LowestPriceCount: 2},
		"Ghost":     {Name: "Ghost", ProductCount: 0, LowestPriceCount: 0},
	}

	board := Leaderboard(stats)
	if len(board) != 3 {
		t.Fatalf("expected 3 rows (zero-product store excluded), got %d", len(board))
	}
	if board[0].Name != "JioMart" {
		t.Fatalf("expected JioMart first, got %q", board[0].Name)
	}
	// Equal win counts order by name for deterministic artifacts.
	if board[1].Name != "Amazon" || board[2].Name != "BigBasket" {
		t.Fatalf("unexpected tie ordering: %v, %v", board[1].Name, board[2].Name)
	}
	if board[0].LowestPricePercentage != 70 {
		t.Fatalf("expected 70%% for JioMart, got %v", board[0].LowestPricePercentage)
	}
}
