package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	manager, err := NewManager("test-secret", "quickbasket-test", opts...)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "issuer"); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}

func TestManager_IssueAndVerify(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(t,
		WithClock(func() time.Time { return issued }),
		WithIDGenerator(func() string { return "sess-001" }),
		WithTokenTTL(time.Hour),
	)

	identity, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if identity.SessionID != "sess-001" {
		t.Fatalf("unexpected session id %q", identity.SessionID)
	}
	if !identity.ExpiresAt.Equal(issued.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", identity.ExpiresAt)
	}

	verified, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.SessionID != "sess-001" {
		t.Fatalf("verified session id = %q, want sess-001", verified.SessionID)
	}
}

func TestManager_VerifyExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(t, WithClock(func() time.Time { return now }), WithTokenTTL(time.Minute))

	_, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestManager_VerifyUsesInjectedClock(t *testing.T) {
	// A token long past wall-clock expiry must still verify when the
	// manager's clock says it is live.
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := newTestManager(t,
		WithClock(func() time.Time { return issued }),
		WithTokenTTL(time.Hour),
	)

	_, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := manager.Verify(token); err != nil {
		t.Fatalf("Verify returned error under the managed clock: %v", err)
	}
}

func TestManager_VerifyRejectsFutureIssuedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer := newTestManager(t, WithClock(func() time.Time { return now.Add(time.Hour) }))
	verifier := newTestManager(t, WithClock(func() time.Time { return now }))

	_, token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for future-issued token, got %v", err)
	}
}

func TestManager_VerifyRejectsTamperedToken(t *testing.T) {
	manager := newTestManager(t)
	other, err := NewManager("other-secret", "quickbasket-test")
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	_, token, err := other.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestManager_VerifyRejectsForeignIssuer(t *testing.T) {
	manager := newTestManager(t)
	foreign, err := NewManager("test-secret", "someone-else")
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	_, token, err := foreign.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRequireSession_AttachesIdentity(t *testing.T) {
	manager := newTestManager(t, WithIDGenerator(func() string { return "sess-abc" }))
	_, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	handlerCalled := false
	handler := RequireSession(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if got := SessionIDFromContext(r.Context()); got != "sess-abc" {
			t.Fatalf("session id in context = %q, want sess-abc", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(TokenHeader, token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Fatalf("expected downstream handler to run")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestRequireSession_RejectsMissingHeader(t *testing.T) {
	manager := newTestManager(t)
	handler := RequireSession(manager)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] != "unauthenticated" {
		t.Fatalf("error code = %v, want unauthenticated", body["error"])
	}
}

func TestRequireSession_RejectsInvalidToken(t *testing.T) {
	manager := newTestManager(t)
	handler := RequireSession(manager)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(TokenHeader, "not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestIdentityFromContext_MissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Fatalf("expected no identity on a bare context")
	}
}
