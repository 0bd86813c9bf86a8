package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/quickbasket/api/internal/domain"
	"github.com/quickbasket/api/internal/repositories"
)

// CatalogStore serves the product catalog and store roster from memory.
type CatalogStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	stores   map[string]domain.Store
	order    []string
}

// NewCatalogStore seeds a catalog store. Passing nil seeds uses the built-in
// demo catalog.
func NewCatalogStore(products []domain.Product, stores []domain.Store) *CatalogStore {
	if products == nil {
		products = SeedProducts()
	}
	if stores == nil {
		stores = SeedStores()
	}

	store := &CatalogStore{
		products: make(map[string]domain.Product, len(products)),
		stores:   make(map[string]domain.Store, len(stores)),
		order:    make([]string, 0, len(products)),
	}
	for _, product := range products {
		if product.ID == "" {
			continue
		}
		if _, ok := store.products[product.ID]; !ok {
			store.order = append(store.order, product.ID)
		}
		store.products[product.ID] = product
	}
	for _, s := range stores {
		if s.ID != "" {
			store.stores[s.ID] = s
		}
	}
	return store
}

// ListProducts implements repositories.CatalogRepository.
func (s *CatalogStore) ListProducts(_ context.Context, filter repositories.ProductFilter) (repositories.ProductPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category := strings.ToLower(strings.TrimSpace(filter.Category))
	matched := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		product := s.products[id]
		if category != "" && strings.ToLower(product.Category) != category {
			continue
		}
		matched = append(matched, product)
	}

	total := len(matched)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]domain.Product, end-offset)
	copy(page, matched[offset:end])
	return repositories.ProductPage{Products: page, Total: total}, nil
}

// FindProduct implements repositories.CatalogRepository.
func (s *CatalogStore) FindProduct(_ context.Context, productID string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, repositories.NotFoundError("catalog: product not found")
	}
	return product, nil
}

// ListStores implements repositories.CatalogRepository.
func (s *CatalogStore) ListStores(_ context.Context) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]domain.Store, 0, len(s.stores))
	for _, store := range s.stores {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })
	return stores, nil
}

// FindStore implements repositories.CatalogRepository.
func (s *CatalogStore) FindStore(_ context.Context, storeID string) (domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store, ok := s.stores[strings.TrimSpace(storeID)]
	if !ok {
		return domain.Store{}, repositories.NotFoundError("catalog: store not found")
	}
	return store, nil
}
