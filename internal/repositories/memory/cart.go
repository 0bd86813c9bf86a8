package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/quickbasket/api/internal/domain"
	"github.com/quickbasket/api/internal/repositories"
)

// CartStore keeps session carts in process memory. Cart persistence is
// session-grade by design; there is no backing database. Safe for the
// occasional concurrent reader, last write wins.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

// NewCartStore constructs an empty cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]domain.Cart)}
}

// GetCart implements repositories.CartRepository.
func (s *CartStore) GetCart(_ context.Context, sessionID string) (domain.Cart, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return domain.Cart{}, repositories.NotFoundError("cart: session id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return domain.Cart{}, repositories.NotFoundError("cart: not found")
	}
	return cloneCart(cart), nil
}

// SaveCart implements repositories.CartRepository.
func (s *CartStore) SaveCart(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	id := strings.TrimSpace(cart.SessionID)
	if id == "" {
		return domain.Cart{}, repositories.ConflictError("cart: session id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[id] = cloneCart(cart)
	return cloneCart(cart), nil
}

// DeleteCart implements repositories.CartRepository.
func (s *CartStore) DeleteCart(_ context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	dup := cart
	dup.Lines = make([]domain.CartLine, len(cart.Lines))
	copy(dup.Lines, cart.Lines)
	if cart.Pending != nil {
		pending := *cart.Pending
		dup.Pending = &pending
	}
	return dup
}
