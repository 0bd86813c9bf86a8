package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// TokenHeader carries the signed session token on every authenticated request.
const TokenHeader = "X-Session-Token"

// Verifier verifies signed session tokens.
type Verifier interface {
	Verify(tokenStr string) (*Identity, error)
}

// RequireSession verifies the session token header and attaches the identity to the request context.
func RequireSession(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := strings.TrimSpace(r.Header.Get(TokenHeader))
			if tokenStr == "" {
				respondSessionError(w, http.StatusUnauthorized, "unauthenticated", "session token header missing")
				return
			}
			if verifier == nil {
				respondSessionError(w, http.StatusUnauthorized, "unauthenticated", "session service unavailable")
				return
			}

			identity, err := verifier.Verify(tokenStr)
			if err != nil {
				respondVerificationError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondSessionError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   code,
		"message": message,
		"status":  status,
	})
}

func respondVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		respondSessionError(w, http.StatusUnauthorized, "token_expired", "session token expired")
	case errors.Is(err, ErrTokenInvalid):
		respondSessionError(w, http.StatusUnauthorized, "invalid_token", "session token invalid")
	default:
		respondSessionError(w, http.StatusUnauthorized, "invalid_token", "session token verification failed")
	}
}
