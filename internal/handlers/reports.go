package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/api/internal/platform/httpx"
	"github.com/quickbasket/api/internal/reports"
	"github.com/quickbasket/api/internal/repositories"
)

// ReportHandlers serves the aggregation batch's durable artifacts. Artifacts
// exist only after at least one aggregation run has completed.
type ReportHandlers struct {
	repo repositories.ReportRepository
}

func NewReportHandlers(repo repositories.ReportRepository) *ReportHandlers {
	return &ReportHandlers{repo: repo}
}

// Routes wires the /reports endpoints onto the provided router.
func (h *ReportHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/prices", h.priceComparison)
	r.Get("/stores", h.storeStats)
	r.Get("/summary", h.storeSummary)
	r.Get("/best-stores", h.bestStores)
}

func (h *ReportHandlers) priceComparison(w http.ResponseWriter, r *http.Request) {
	h.serve(r.Context(), w, func() (any, error) { return h.repo.PriceComparison() })
}

func (h *ReportHandlers) storeStats(w http.ResponseWriter, r *http.Request) {
	h.serve(r.Context(), w, func() (any, error) { return h.repo.StoreStats() })
}

func (h *ReportHandlers) storeSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(r.Context(), w, func() (any, error) { return h.repo.StoreSummary() })
}

func (h *ReportHandlers) bestStores(w http.ResponseWriter, r *http.Request) {
	h.serve(r.Context(), w, func() (any, error) { return h.repo.BestStores() })
}

func (h *ReportHandlers) serve(ctx context.Context, w http.ResponseWriter, load func() (any, error)) {
	if h.repo == nil {
		httpx.WriteError(ctx, w, httpx.NewError("reports_unavailable", "report storage is unavailable", http.StatusServiceUnavailable))
		return
	}

	payload, err := load()
	if err != nil {
		if errors.Is(err, reports.ErrNotAvailable) {
			httpx.WriteError(ctx, w, httpx.NewError("report_not_ready", "the report has not been generated yet", http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("reports_unavailable", "report storage is unavailable", http.StatusServiceUnavailable))
		return
	}
	writeJSONResponse(w, http.StatusOK, payload)
}
