package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/api/internal/repositories/memory"
	"github.com/quickbasket/api/internal/services"
)

type stubMarketplaceService struct {
	compare func(ctx context.Context, cmd services.CompareCommand) (services.ComparisonReport, error)
}

func (s *stubMarketplaceService) Compare(ctx context.Context, cmd services.CompareCommand) (services.ComparisonReport, error) {
	return s.compare(ctx, cmd)
}

func newMarketplaceRouter(t *testing.T, svc services.MarketplaceService) chi.Router {
	t.Helper()
	catalog := memory.NewCatalogStore(memory.SeedProducts(), memory.SeedStores())
	r := chi.NewRouter()
	NewMarketplaceHandlers(svc, catalog).Routes(r)
	return r
}

func TestMarketplaceCompareRequiresQuery(t *testing.T) {
	router := newMarketplaceRouter(t, &stubMarketplaceService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarketplaceCompareSanitizesQuery(t *testing.T) {
	var captured services.CompareCommand
	svc := &stubMarketplaceService{
		compare: func(_ context.Context, cmd services.CompareCommand) (services.ComparisonReport, error) {
			captured = cmd
			return services.ComparisonReport{Query: cmd.Query, OwnPrice: cmd.OwnPrice, Rank: 1, Participants: 1}, nil
		},
	}
	router := newMarketplaceRouter(t, svc)

	target := "/?query=" + url.QueryEscape(`<script>alert(1)</script>salt`) + "&ownPrice=24"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Query != "salt" {
		t.Fatalf("expected markup stripped from query, got %q", captured.Query)
	}
	if captured.OwnPrice != 24 {
		t.Fatalf("expected ownPrice 24, got %v", captured.OwnPrice)
	}
}

func TestMarketplaceCompareRejectsBadOwnPrice(t *testing.T) {
	router := newMarketplaceRouter(t, &stubMarketplaceService{})

	req := httptest.NewRequest(http.MethodGet, "/?query=salt&ownPrice=-3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarketplaceCompareResolvesOwnPriceFromCatalog(t *testing.T) {
	var captured services.CompareCommand
	svc := &stubMarketplaceService{
		compare: func(_ context.Context, cmd services.CompareCommand) (services.ComparisonReport, error) {
			captured = cmd
			return services.ComparisonReport{Query: cmd.Query, OwnPrice: cmd.OwnPrice}, nil
		},
	}
	router := newMarketplaceRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/?query=salt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// Seeded salt offers are 24, 25 and 23; the lowest available wins.
	if captured.OwnPrice != 23 {
		t.Fatalf("expected own price 23 from catalog, got %v", captured.OwnPrice)
	}
}

func TestMarketplaceCompareUnresolvableOwnPrice(t *testing.T) {
	router := newMarketplaceRouter(t, &stubMarketplaceService{})

	req := httptest.NewRequest(http.MethodGet, "/?query=dragonfruit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarketplaceCompareReportsSampleAdvisory(t *testing.T) {
	svc := &stubMarketplaceService{
		compare: func(_ context.Context, cmd services.CompareCommand) (services.ComparisonReport, error) {
			return services.ComparisonReport{
				Query:          cmd.Query,
				OwnPrice:       cmd.OwnPrice,
				Rank:           2,
				Participants:   4,
				UsedSampleData: true,
			}, nil
		},
	}
	router := newMarketplaceRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/?query=salt&ownPrice=24", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report services.ComparisonReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.UsedSampleData {
		t.Fatalf("expected sample data advisory in response")
	}
	if report.Rank != 2 || report.Participants != 4 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
