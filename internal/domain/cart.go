package domain

import "time"

// CartState describes where a cart sits in the single-store policy state machine.
type CartState string

const (
	// CartStateEmpty means the cart holds no lines and no pending decision.
	CartStateEmpty CartState = "empty"
	// CartStateSingleStore means every line belongs to one store.
	CartStateSingleStore CartState = "single_store"
	// CartStatePendingDecision means an add from a second store is deferred
	// until the user confirms or cancels. Checkout is refused in this state.
	CartStatePendingDecision CartState = "pending_decision"
)

// ConflictDecision resolves a pending multi-store conflict.
type ConflictDecision string

const (
	// DecisionClearAndAdd empties the cart and performs the deferred add.
	DecisionClearAndAdd ConflictDecision = "clear_and_add"
	// DecisionCancel discards the deferred add and leaves the cart untouched.
	DecisionCancel ConflictDecision = "cancel"
)

// CartLine is one product entry in a cart. Quantity is always positive; a
// zero or negative quantity update removes the line.
type CartLine struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   float64   `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	StoreID     string    `json:"storeId"`
	StoreName   string    `json:"storeName"`
	AddedAt     time.Time `json:"addedAt"`
}

// Subtotal returns the line total.
func (l CartLine) Subtotal() float64 {
	if l.Quantity <= 0 {
		return 0
	}
	return l.UnitPrice * float64(l.Quantity)
}

// PendingAdd holds an add-to-cart deferred by a multi-store conflict.
type PendingAdd struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   float64   `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	StoreID     string    `json:"storeId"`
	StoreName   string    `json:"storeName"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Cart is the session-scoped ordered collection of lines. Under normal
// operation all lines share one store id; a transient multi-store condition
// is only representable through Pending while a decision is outstanding.
type Cart struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Lines     []CartLine  `json:"lines"`
	Pending   *PendingAdd `json:"pending,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// State derives the cart's position in the consolidation state machine.
func (c Cart) State() CartState {
	if c.Pending != nil {
		return CartStatePendingDecision
	}
	if len(c.Lines) == 0 {
		return CartStateEmpty
	}
	return CartStateSingleStore
}

// StoreIDs lists the distinct store ids present in the cart lines, in first-seen order.
func (c Cart) StoreIDs() []string {
	seen := make(map[string]struct{}, 2)
	ids := make([]string, 0, 2)
	for _, line := range c.Lines {
		if _, ok := seen[line.StoreID]; ok {
			continue
		}
		seen[line.StoreID] = struct{}{}
		ids = append(ids, line.StoreID)
	}
	return ids
}

// Subtotal sums all line totals.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}
