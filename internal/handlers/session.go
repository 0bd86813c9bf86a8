package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/api/internal/platform/httpx"
	"github.com/quickbasket/api/internal/platform/session"
)

// SessionHandlers issues browsing sessions. There are no user accounts; any
// caller with a name gets a fresh token.
type SessionHandlers struct {
	manager *session.Manager
}

func NewSessionHandlers(manager *session.Manager) *SessionHandlers {
	return &SessionHandlers{manager: manager}
}

// Routes wires the /session endpoints onto the provided router.
func (h *SessionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createSession)
}

type createSessionRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type createSessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *SessionHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("session_unavailable", "session issuing is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultBodyLimit)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	var req createSessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("invalid JSON payload: %v", err), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "name is required", http.StatusBadRequest))
		return
	}

	identity, token, err := h.manager.Issue()
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("session_unavailable", "could not issue a session", http.StatusServiceUnavailable))
		return
	}

	writeJSONResponse(w, http.StatusCreated, createSessionResponse{
		Token:     token,
		SessionID: identity.SessionID,
		ExpiresAt: identity.ExpiresAt,
	})
}
