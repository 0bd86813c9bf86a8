package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps idempotency entries in process. Carts themselves live in
// memory, so the replay window for their mutations does too.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Reserve claims the key for the given fingerprint. An expired entry is
// evicted on contact and the key treated as free.
func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Claim, error) {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := entryID(key)
	entry, ok := s.entries[id]
	if ok && !entry.ExpiresAt.IsZero() && !now.Before(entry.ExpiresAt) {
		delete(s.entries, id)
		ok = false
	}

	if !ok {
		entry = Entry{
			ScopedKey:   key,
			Fingerprint: fingerprint,
			Status:      StatusReserved,
			ReservedAt:  now,
			ExpiresAt:   now.Add(ttl),
		}
		s.entries[id] = entry
		return Claim{Outcome: ClaimNew, Entry: entry}, nil
	}

	if entry.Fingerprint != fingerprint {
		return Claim{}, ErrFingerprintMismatch
	}
	if entry.Status == StatusStored {
		return Claim{Outcome: ClaimReplay, Entry: entry}, nil
	}
	return Claim{Outcome: ClaimInFlight, Entry: entry}, nil
}

// SaveResponse captures the handler's response against the reserved key.
func (s *MemoryStore) SaveResponse(_ context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := entryID(key)
	entry, ok := s.entries[id]
	if ok && entry.Fingerprint != fingerprint {
		return ErrFingerprintMismatch
	}
	if !ok {
		entry = Entry{ScopedKey: key, Fingerprint: fingerprint, ReservedAt: now}
	}

	entry.Status = StatusStored
	entry.ResponseStatus = resp.Status
	entry.ResponseHeaders = captureHeaders(resp.Headers)
	entry.ResponseBody = nil
	if len(resp.Body) > 0 {
		entry.ResponseBody = append([]byte(nil), resp.Body...)
	}
	if entry.ReservedAt.IsZero() {
		entry.ReservedAt = now
	}
	entry.CompletedAt = now
	entry.ExpiresAt = now.Add(ttl)
	s.entries[id] = entry

	return nil
}

// Release frees the key so a retry can claim it again.
func (s *MemoryStore) Release(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryID(key))
	return nil
}

// CleanupExpired removes up to limit entries whose replay window has closed.
func (s *MemoryStore) CleanupExpired(_ context.Context, now time.Time, limit int) (int, error) {
	now = now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	removed := 0
	for id, entry := range s.entries {
		if entry.ExpiresAt.IsZero() || now.Before(entry.ExpiresAt) {
			continue
		}
		delete(s.entries, id)
		removed++
		if removed >= limit {
			break
		}
	}
	return removed, nil
}
