package services

import (
	"context"
	"errors"
	"testing"

	"github.com/quickbasket/api/internal/repositories/memory"
)

func newCatalogServiceForTest(t *testing.T) CatalogService {
	t.Helper()
	service, err := NewCatalogService(CatalogServiceDeps{
		Repository: memory.NewCatalogStore(memory.SeedProducts(), memory.SeedStores()),
	})
	if err != nil {
		t.Fatalf("NewCatalogService returned error: %v", err)
	}
	return service
}

func TestNewCatalogService_RequiresRepository(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); err == nil {
		t.Fatalf("expected error when repository is missing")
	}
}

func TestListProducts_AllPages(t *testing.T) {
	service := newCatalogServiceForTest(t)
	ctx := context.Background()

	first, err := service.ListProducts(ctx, ProductListQuery{PageSize: 3})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if len(first.Products) != 3 || first.Total != 5 {
		t.Fatalf("first page: %d products, total %d; want 3 and 5", len(first.Products), first.Total)
	}
	if first.NextPageToken == "" {
		t.Fatalf("expected a next page token")
	}

	second, err := service.ListProducts(ctx, ProductListQuery{PageSize: 3, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("ListProducts second page returned error: %v", err)
	}
	if len(second.Products) != 2 {
		t.Fatalf("second page: %d products, want 2", len(second.Products))
	}
	if second.NextPageToken != "" {
		t.Fatalf("expected no token at the end of the listing, got %q", second.NextPageToken)
	}

	seen := map[string]bool{}
	for _, p := range append(first.Products, second.Products...) {
		seen[p.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("pages overlap or drop products: %v", seen)
	}
}

func TestListProducts_CategoryFilter(t *testing.T) {
	service := newCatalogServiceForTest(t)

	list, err := service.ListProducts(context.Background(), ProductListQuery{Category: "Dairy"})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("Total = %d, want 2 dairy products", list.Total)
	}
	for _, p := range list.Products {
		if p.Category != "dairy" {
			t.Fatalf("unexpected product %q in dairy listing", p.ID)
		}
	}
}

func TestListProducts_RejectsBadToken(t *testing.T) {
	service := newCatalogServiceForTest(t)

	_, err := service.ListProducts(context.Background(), ProductListQuery{PageToken: "%%%"})
	if !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected ErrCatalogInvalidInput, got %v", err)
	}
}

func TestGetProduct(t *testing.T) {
	service := newCatalogServiceForTest(t)
	ctx := context.Background()

	product, err := service.GetProduct(ctx, "p-salt")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if product.Name != "Tata Salt" || len(product.StoreOptions) != 3 {
		t.Fatalf("unexpected product %+v", product)
	}

	if _, err := service.GetProduct(ctx, "p-missing"); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
	if _, err := service.GetProduct(ctx, "   "); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected ErrCatalogInvalidInput, got %v", err)
	}
}

func TestListStores_SortedByName(t *testing.T) {
	service := newCatalogServiceForTest(t)

	stores, err := service.ListStores(context.Background())
	if err != nil {
		t.Fatalf("ListStores returned error: %v", err)
	}
	if len(stores) != 3 {
		t.Fatalf("expected 3 stores, got %d", len(stores))
	}
	for i := 1; i < len(stores); i++ {
		if stores[i-1].Name > stores[i].Name {
			t.Fatalf("stores not sorted by name: %v", stores)
		}
	}
}
