// Package idempotency guards the cart mutation and checkout endpoints
// against duplicate submissions. A client retrying a POST with the same
// Idempotency-Key receives the stored response instead of performing the
// mutation a second time. Keys are scoped per session so two shoppers
// reusing the same key never collide.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Status is the lifecycle state of a stored cart mutation entry.
type Status string

const (
	// DefaultTTL bounds how long a completed mutation can be replayed.
	DefaultTTL = 24 * time.Hour
	// StatusReserved means a request holds the key but its response has not been captured yet.
	StatusReserved Status = "reserved"
	// StatusStored means the mutation's response is captured and replayable.
	StatusStored Status = "stored"
)

// ClaimOutcome describes what a caller should do after claiming a key.
type ClaimOutcome int

const (
	// ClaimNew means the key was free and the mutation should proceed.
	ClaimNew ClaimOutcome = iota
	// ClaimReplay means an earlier mutation completed and its response should be replayed.
	ClaimReplay
	// ClaimInFlight means another request is still processing this key.
	ClaimInFlight
)

// Claim is the result of reserving a key, carrying the stored entry when one exists.
type Claim struct {
	Outcome ClaimOutcome
	Entry   Entry
}

// Entry is the persisted record for one session-scoped idempotency key.
type Entry struct {
	ScopedKey       string
	Fingerprint     string
	Status          Status
	ResponseStatus  int
	ResponseHeaders map[string][]string
	ResponseBody    []byte
	ReservedAt      time.Time
	CompletedAt     time.Time
	ExpiresAt       time.Time
}

// Response is the captured HTTP response stored for replay.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Store persists idempotency claims and their captured responses.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Claim, error)
	SaveResponse(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// ErrFingerprintMismatch is returned when a key is reused for a request with
// a different method, path, body, or session.
var ErrFingerprintMismatch = errors.New("idempotency: key reused with a different request fingerprint")

func entryID(scopedKey string) string {
	return sha256Hex([]byte(strings.TrimSpace(scopedKey)))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Hop-by-hop and per-response headers that must not be replayed verbatim.
var replaySkippedHeaders = map[string]struct{}{
	"Content-Length":      {},
	"Date":                {},
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailers":            {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func captureHeaders(header http.Header) map[string][]string {
	if len(header) == 0 {
		return nil
	}
	captured := make(map[string][]string, len(header))
	for name, values := range header {
		canonical := http.CanonicalHeaderKey(name)
		if _, skip := replaySkippedHeaders[canonical]; skip {
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		captured[canonical] = copied
	}
	if len(captured) == 0 {
		return nil
	}
	return captured
}

func restoreHeaders(values map[string][]string) http.Header {
	if len(values) == 0 {
		return http.Header{}
	}
	header := make(http.Header, len(values))
	for name, vals := range values {
		copied := make([]string, len(vals))
		copy(copied, vals)
		header[name] = copied
	}
	return header
}
