package repositories

import (
	"context"

	"github.com/quickbasket/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Offset   int
	Limit    int
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products []domain.Product
	Total    int
}

// CatalogRepository serves the storefront catalog: products with their
// per-store offers, and the partner store roster.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) (ProductPage, error)
	FindProduct(ctx context.Context, productID string) (domain.Product, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
	FindStore(ctx context.Context, storeID string) (domain.Store, error)
}

// CartRepository persists session carts. Implementations are session-grade
// key-value stores; there is no server-side database behind them.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	DeleteCart(ctx context.Context, sessionID string) error
}

// ReportRepository reads back the aggregation batch's durable artifacts.
type ReportRepository interface {
	PriceComparison() (map[string]domain.ProductPriceRecord, error)
	StoreStats() (map[string]domain.StoreStat, error)
	StoreSummary() ([]domain.StoreSummary, error)
	BestStores() (map[string]domain.BestStoreReport, error)
}
