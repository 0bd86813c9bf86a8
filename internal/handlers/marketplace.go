package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/quickbasket/api/internal/platform/httpx"
	"github.com/quickbasket/api/internal/repositories"
	"github.com/quickbasket/api/internal/services"
)

// MarketplaceHandlers exposes the competitor price comparison endpoint.
// When the caller omits ownPrice the handler resolves it from the catalog:
// the lowest available partner offer for a product whose name matches the
// query, case-insensitively.
type MarketplaceHandlers struct {
	market  services.MarketplaceService
	catalog repositories.CatalogRepository
	policy  *bluemonday.Policy
}

func NewMarketplaceHandlers(market services.MarketplaceService, catalog repositories.CatalogRepository) *MarketplaceHandlers {
	return &MarketplaceHandlers{
		market:  market,
		catalog: catalog,
		policy:  bluemonday.StrictPolicy(),
	}
}

// Routes wires the /marketplace endpoints onto the provided router.
func (h *MarketplaceHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.compare)
}

func (h *MarketplaceHandlers) compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.market == nil {
		httpx.WriteError(ctx, w, httpx.NewError("marketplace_unavailable", "marketplace comparison is unavailable", http.StatusServiceUnavailable))
		return
	}

	query := strings.TrimSpace(h.policy.Sanitize(r.URL.Query().Get("query")))
	if query == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "query parameter is required", http.StatusBadRequest))
		return
	}

	ownPrice, err := h.resolveOwnPrice(ctx, r.URL.Query().Get("ownPrice"), query)
	if err != nil {
		h.writeCompareError(ctx, w, err)
		return
	}

	report, err := h.market.Compare(ctx, services.CompareCommand{
		Query:    query,
		OwnPrice: ownPrice,
	})
	if err != nil {
		h.writeCompareError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

var errOwnPriceUnresolved = errors.New("own price could not be resolved from the catalog")

func (h *MarketplaceHandlers) resolveOwnPrice(ctx context.Context, raw, query string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return 0, errors.New("ownPrice must be a positive number")
		}
		return price, nil
	}
	if h.catalog == nil {
		return 0, errOwnPriceUnresolved
	}

	page, err := h.catalog.ListProducts(ctx, repositories.ProductFilter{})
	if err != nil {
		return 0, errOwnPriceUnresolved
	}

	needle := strings.ToLower(query)
	best := math.Inf(1)
	for _, product := range page.Products {
		if !strings.Contains(strings.ToLower(product.Name), needle) {
			continue
		}
		for _, opt := range product.StoreOptions {
			if opt.Available && opt.Price > 0 && opt.Price < best {
				best = opt.Price
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0, errOwnPriceUnresolved
	}
	return best, nil
}

func (h *MarketplaceHandlers) writeCompareError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMarketplaceInvalidInput), errors.Is(err, errOwnPriceUnresolved):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "comparison timed out", http.StatusGatewayTimeout))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
