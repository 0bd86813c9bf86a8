package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/quickbasket/api/internal/domain"
	"github.com/quickbasket/api/internal/platform/session"
	"github.com/quickbasket/api/internal/services"
)

type stubCartService struct {
	services.CartService

	getCart     func(ctx context.Context, sessionID string) (services.Cart, error)
	addItem     func(ctx context.Context, cmd services.AddItemCommand) (services.Cart, error)
	resolve     func(ctx context.Context, cmd services.ResolveConflictCommand) (services.Cart, error)
	moveAll     func(ctx context.Context, cmd services.MoveCartCommand) (services.MoveCartResult, error)
	summaryFn   func(ctx context.Context, sessionID string) (services.CartSummary, error)
	checkoutFn  func(ctx context.Context, sessionID string) (services.CheckoutResult, error)
	clearCartFn func(ctx context.Context, sessionID string) error
}

func (s *stubCartService) GetCart(ctx context.Context, sessionID string) (services.Cart, error) {
	return s.getCart(ctx, sessionID)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddItemCommand) (services.Cart, error) {
	return s.addItem(ctx, cmd)
}

func (s *stubCartService) ResolveConflict(ctx context.Context, cmd services.ResolveConflictCommand) (services.Cart, error) {
	return s.resolve(ctx, cmd)
}

func (s *stubCartService) MoveAllToStore(ctx context.Context, cmd services.MoveCartCommand) (services.MoveCartResult, error) {
	return s.moveAll(ctx, cmd)
}

func (s *stubCartService) Summary(ctx context.Context, sessionID string) (services.CartSummary, error) {
	return s.summaryFn(ctx, sessionID)
}

func (s *stubCartService) Checkout(ctx context.Context, sessionID string) (services.CheckoutResult, error) {
	return s.checkoutFn(ctx, sessionID)
}

func (s *stubCartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.clearCartFn(ctx, sessionID)
}

func newCartRouter(svc services.CartService) chi.Router {
	r := chi.NewRouter()
	NewCartHandlers(svc).Routes(r)
	return r
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	identity := &session.Identity{
		SessionID: "sess-1",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(session.WithIdentity(req.Context(), identity))
}

func TestCartHandlersRequireSession(t *testing.T) {
	router := newCartRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope["error"] != "unauthenticated" {
		t.Fatalf("expected unauthenticated error code, got %v", envelope["error"])
	}
}

func TestCartHandlersAddItem(t *testing.T) {
	var captured services.AddItemCommand
	svc := &stubCartService{
		addItem: func(_ context.Context, cmd services.AddItemCommand) (services.Cart, error) {
			captured = cmd
			return services.Cart{
				ID:        "cart-1",
				SessionID: cmd.SessionID,
				Lines: []domain.CartLine{{
					ID:        "line-1",
					ProductID: cmd.ProductID,
					StoreID:   cmd.StoreID,
					Quantity:  cmd.Quantity,
				}},
			}, nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/items", `{"productId":"p-salt","storeId":"1","quantity":2}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.SessionID != "sess-1" || captured.ProductID != "p-salt" || captured.Quantity != 2 {
		t.Fatalf("unexpected command: %+v", captured)
	}
}

func TestCartHandlersAddItemDefaultsQuantity(t *testing.T) {
	var captured services.AddItemCommand
	svc := &stubCartService{
		addItem: func(_ context.Context, cmd services.AddItemCommand) (services.Cart, error) {
			captured = cmd
			return services.Cart{ID: "cart-1"}, nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/items", `{"productId":"p-salt","storeId":"1"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.Quantity != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", captured.Quantity)
	}
}

func TestCartHandlersAddItemMultiStoreConflict(t *testing.T) {
	svc := &stubCartService{
		addItem: func(_ context.Context, cmd services.AddItemCommand) (services.Cart, error) {
			return services.Cart{
				ID: "cart-1",
				Pending: &domain.PendingAdd{
					ProductID: cmd.ProductID,
					StoreID:   cmd.StoreID,
					Quantity:  cmd.Quantity,
				},
			}, &services.MultiStoreConflictError{CurrentStores: []string{"QuickBasket Central"}, NewStore: "FreshMart Midtown"}
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/items", `{"productId":"p-salt","storeId":"2","quantity":1}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode conflict payload: %v", err)
	}
	if envelope["error"] != "multi_store_conflict" {
		t.Fatalf("expected multi_store_conflict code, got %v", envelope["error"])
	}
	if envelope["newStore"] != "FreshMart Midtown" {
		t.Fatalf("expected newStore detail, got %v", envelope["newStore"])
	}
	if envelope["pending"] == nil {
		t.Fatalf("expected pending add in conflict payload")
	}
}

func TestCartHandlersDecisionPending(t *testing.T) {
	svc := &stubCartService{
		checkoutFn: func(context.Context, string) (services.CheckoutResult, error) {
			return services.CheckoutResult{}, services.ErrCartDecisionPending
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/checkout", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope["error"] != "decision_pending" {
		t.Fatalf("expected decision_pending code, got %v", envelope["error"])
	}
}

func TestCartHandlersResolveConflict(t *testing.T) {
	var captured services.ResolveConflictCommand
	svc := &stubCartService{
		resolve: func(_ context.Context, cmd services.ResolveConflictCommand) (services.Cart, error) {
			captured = cmd
			return services.Cart{ID: "cart-1"}, nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/conflict", `{"decision":"clear_and_add"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Decision != domain.DecisionClearAndAdd {
		t.Fatalf("expected clear_and_add decision, got %q", captured.Decision)
	}
}

func TestCartHandlersResolveConflictInvalid(t *testing.T) {
	svc := &stubCartService{
		resolve: func(context.Context, services.ResolveConflictCommand) (services.Cart, error) {
			return services.Cart{}, services.ErrCartInvalidInput
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/conflict", `{"decision":"merge"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartHandlersMoveAll(t *testing.T) {
	svc := &stubCartService{
		moveAll: func(_ context.Context, cmd services.MoveCartCommand) (services.MoveCartResult, error) {
			if cmd.TargetStoreID != "3" {
				return services.MoveCartResult{}, services.ErrCartInvalidInput
			}
			return services.MoveCartResult{
				Cart:       services.Cart{ID: "cart-1"},
				Moved:      []string{"Tata Salt 1kg"},
				Unresolved: []string{"Amul Milk 500ml"},
			}, nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodPost, "/move", `{"targetStoreId":"3"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result services.MoveCartResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode move result: %v", err)
	}
	if len(result.Moved) != 1 || len(result.Unresolved) != 1 {
		t.Fatalf("unexpected move result: %+v", result)
	}
}

func TestCartHandlersClear(t *testing.T) {
	cleared := false
	svc := &stubCartService{
		clearCartFn: func(_ context.Context, sessionID string) error {
			cleared = sessionID == "sess-1"
			return nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodDelete, "/", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !cleared {
		t.Fatalf("expected clear to run against the session cart")
	}
}

func TestCartHandlersSummary(t *testing.T) {
	svc := &stubCartService{
		summaryFn: func(context.Context, string) (services.CartSummary, error) {
			return services.CartSummary{
				State:         domain.CartStateSingleStore,
				ItemCount:     3,
				Subtotal:      120,
				DeliveryFee:   15,
				Total:         135,
				CheckoutReady: true,
			}, nil
		},
	}
	router := newCartRouter(svc)

	req := authedRequest(http.MethodGet, "/summary", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary services.CartSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Total != 135 || !summary.CheckoutReady {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCartHandlersInvalidJSON(t *testing.T) {
	router := newCartRouter(&stubCartService{})

	req := authedRequest(http.MethodPost, "/items", `{"productId":`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
