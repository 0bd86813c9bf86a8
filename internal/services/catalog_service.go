package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quickbasket/api/internal/platform/pagination"
	"github.com/quickbasket/api/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: repository is required")

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogNotFound indicates the requested product or store does not exist.
var ErrCatalogNotFound = errors.New("catalog service: not found")

// ErrCatalogUnavailable indicates the catalog backend cannot serve the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CatalogServiceDeps wires the repository dependency for catalog reads.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
}

type catalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}
	return &catalogService{repo: deps.Repository}, nil
}

// ListProducts returns one page of the catalog, optionally narrowed by category.
func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) (ProductList, error) {
	if s == nil || s.repo == nil {
		return ProductList{}, ErrCatalogUnavailable
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	if pageSize > pagination.DefaultMaxPageSize {
		pageSize = pagination.DefaultMaxPageSize
	}

	cursor, err := pagination.DecodeToken(query.PageToken)
	if err != nil {
		return ProductList{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}

	page, err := s.repo.ListProducts(ctx, repositories.ProductFilter{
		Category: strings.TrimSpace(query.Category),
		Offset:   cursor.Offset,
		Limit:    pageSize,
	})
	if err != nil {
		return ProductList{}, s.translateRepoError(err)
	}

	list := ProductList{
		Products: page.Products,
		Total:    page.Total,
	}
	if list.Products == nil {
		list.Products = []Product{}
	}

	next, err := pagination.NextToken(cursor.Offset+len(page.Products), page.Total)
	if err != nil {
		return ProductList{}, fmt.Errorf("catalog service: encode page token: %w", err)
	}
	list.NextPageToken = next
	return list, nil
}

// GetProduct loads one product with its per-store options.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if s == nil || s.repo == nil {
		return Product{}, ErrCatalogUnavailable
	}

	id := strings.TrimSpace(productID)
	if id == "" {
		return Product{}, ErrCatalogInvalidInput
	}

	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}
	return product, nil
}

// ListStores returns the partner store roster sorted by name.
func (s *catalogService) ListStores(ctx context.Context) ([]Store, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].Name < stores[j].Name })
	return stores, nil
}

func (s *catalogService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
		case repoErr.IsUnavailable():
			return ErrCatalogUnavailable
		}
		return ErrCatalogUnavailable
	}
	return ErrCatalogUnavailable
}
