package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/api/internal/repositories/memory"
	"github.com/quickbasket/api/internal/services"
)

func newCatalogRouter(t *testing.T) chi.Router {
	t.Helper()
	catalog := memory.NewCatalogStore(memory.SeedProducts(), memory.SeedStores())
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{Repository: catalog})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	r := chi.NewRouter()
	NewCatalogHandlers(svc).Routes(r)
	return r
}

func TestCatalogHandlersListProducts(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var list services.ProductList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode product list: %v", err)
	}
	if list.Total != len(memory.SeedProducts()) {
		t.Fatalf("expected total %d, got %d", len(memory.SeedProducts()), list.Total)
	}
}

func TestCatalogHandlersListProductsPaging(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products?pageSize=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var first services.ProductList
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode first page: %v", err)
	}
	if len(first.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(first.Products))
	}
	if first.NextPageToken == "" {
		t.Fatalf("expected a next page token")
	}

	req = httptest.NewRequest(http.MethodGet, "/products?pageSize=2&pageToken="+first.NextPageToken, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var second services.ProductList
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode second page: %v", err)
	}
	if len(second.Products) == 0 {
		t.Fatalf("expected products on the second page")
	}
	if second.Products[0].ID == first.Products[0].ID {
		t.Fatalf("second page repeated the first page")
	}
}

func TestCatalogHandlersCategoryFilter(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products?category=staples", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list services.ProductList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	for _, product := range list.Products {
		if product.Category != "staples" {
			t.Fatalf("unexpected category %q in filtered list", product.Category)
		}
	}
	if list.Total == 0 {
		t.Fatalf("expected staples in the seed catalog")
	}
}

func TestCatalogHandlersGetProduct(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products/p-salt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Product services.Product `json:"product"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if payload.Product.ID != "p-salt" {
		t.Fatalf("expected p-salt, got %q", payload.Product.ID)
	}
	if len(payload.Product.StoreOptions) != 3 {
		t.Fatalf("expected 3 store options, got %d", len(payload.Product.StoreOptions))
	}
}

func TestCatalogHandlersGetProductNotFound(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products/p-missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCatalogHandlersListStores(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Stores []services.Store `json:"stores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode stores: %v", err)
	}
	if len(payload.Stores) != 3 {
		t.Fatalf("expected 3 partner stores, got %d", len(payload.Stores))
	}
}
