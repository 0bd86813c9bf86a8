package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/quickbasket/api/internal/marketplace"
)

var errMarketplaceFetcherRequired = errors.New("marketplace service: fetcher is required")

// ErrMarketplaceInvalidInput indicates the caller supplied invalid input.
var ErrMarketplaceInvalidInput = errors.New("marketplace service: invalid input")

// ListingFetcher retrieves competitor listings for a product query.
type ListingFetcher interface {
	FetchListings(ctx context.Context, query string) ([]marketplace.Listing, error)
}

// MarketplaceServiceDeps wires the external price source and its fallback.
// Jitter, when set, perturbs every competitor price before ranking so repeated
// comparisons reflect marketplace volatility. A nil Jitter leaves prices as
// fetched.
type MarketplaceServiceDeps struct {
	Fetcher ListingFetcher
	Samples func(query string) []marketplace.Listing
	Jitter  func(price float64) float64
	Logger  func(context.Context, string, map[string]any)
}

type marketplaceService struct {
	fetcher ListingFetcher
	samples func(string) []marketplace.Listing
	jitter  func(float64) float64
	logger  func(context.Context, string, map[string]any)
}

// NewMarketplaceService constructs a MarketplaceService enforcing dependency validation.
func NewMarketplaceService(deps MarketplaceServiceDeps) (MarketplaceService, error) {
	if deps.Fetcher == nil {
		return nil, errMarketplaceFetcherRequired
	}

	samples := deps.Samples
	if samples == nil {
		samples = marketplace.SampleListings
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	jitter := deps.Jitter
	if jitter == nil {
		jitter = func(price float64) float64 { return price }
	}

	return &marketplaceService{
		fetcher: deps.Fetcher,
		samples: samples,
		jitter:  jitter,
		logger:  logger,
	}, nil
}

// Compare fetches competitor listings for the query, applies the undercut rule
// against the store's own price, and ranks all participants ascending by price.
// Any fetch failure falls back to the deterministic sample dataset and flags
// the report advisory.
func (s *marketplaceService) Compare(ctx context.Context, cmd CompareCommand) (ComparisonReport, error) {
	if s == nil || s.fetcher == nil {
		return ComparisonReport{}, errMarketplaceFetcherRequired
	}

	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return ComparisonReport{}, fmt.Errorf("%w: query is required", ErrMarketplaceInvalidInput)
	}
	if cmd.OwnPrice <= 0 {
		return ComparisonReport{}, fmt.Errorf("%w: own price must be positive", ErrMarketplaceInvalidInput)
	}

	report := ComparisonReport{
		Query:    query,
		OwnPrice: cmd.OwnPrice,
	}

	listings, err := s.fetcher.FetchListings(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return ComparisonReport{}, ctx.Err()
		}
		s.logger(ctx, "marketplace.fetch_fallback", map[string]any{
			"query": query,
			"error": err.Error(),
		})
		listings = s.samples(query)
		report.UsedSampleData = true
	}
	report.Competitors = make([]marketplace.Listing, 0, len(listings))
	for _, listing := range listings {
		if listing.Price > 0 {
			listing.Price = s.jitter(listing.Price)
		}
		report.Competitors = append(report.Competitors, listing)
	}
	report.Participants = len(report.Competitors) + 1

	minCompetitor := math.Inf(1)
	for _, listing := range report.Competitors {
		if listing.Price <= 0 {
			continue
		}
		if listing.Price < minCompetitor {
			minCompetitor = listing.Price
		}
	}

	effective := cmd.OwnPrice
	if !math.IsInf(minCompetitor, 1) && minCompetitor <= cmd.OwnPrice {
		suggested := math.Round(minCompetitor * 0.95)
		report.SuggestedPrice = &suggested
		effective = suggested
	}

	rank := 1
	for _, listing := range report.Competitors {
		if listing.Price > 0 && listing.Price < effective {
			rank++
		}
	}
	report.Rank = rank
	return report, nil
}
