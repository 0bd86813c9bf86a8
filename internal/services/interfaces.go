package services

import (
	"context"
	"time"

	domain "github.com/quickbasket/api/internal/domain"
	"github.com/quickbasket/api/internal/marketplace"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Cart        = domain.Cart
	CartLine    = domain.CartLine
	CartState   = domain.CartState
	PendingAdd  = domain.PendingAdd
	Product     = domain.Product
	Store       = domain.Store
	StoreOption = domain.StoreOption
	Listing     = marketplace.Listing
)

// CartService manages session-scoped carts under the single-store policy.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (Cart, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error)
	ResolveConflict(ctx context.Context, cmd ResolveConflictCommand) (Cart, error)
	UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (Cart, error)
	RemoveLine(ctx context.Context, cmd RemoveLineCommand) (Cart, error)
	MoveAllToStore(ctx context.Context, cmd MoveCartCommand) (MoveCartResult, error)
	ClearCart(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID string) (CartSummary, error)
	Checkout(ctx context.Context, sessionID string) (CheckoutResult, error)
}

// CatalogService serves the storefront catalog reads.
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductListQuery) (ProductList, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListStores(ctx context.Context) ([]Store, error)
}

// MarketplaceService compares a product query against external competitor listings.
type MarketplaceService interface {
	Compare(ctx context.Context, cmd CompareCommand) (ComparisonReport, error)
}

// AddItemCommand adds a product from one partner store to the session cart.
type AddItemCommand struct {
	SessionID string
	ProductID string
	StoreID   string
	Quantity  int
}

// ResolveConflictCommand settles a pending multi-store decision.
type ResolveConflictCommand struct {
	SessionID string
	Decision  domain.ConflictDecision
}

// UpdateQuantityCommand sets a line's quantity; zero or below removes the line.
type UpdateQuantityCommand struct {
	SessionID string
	LineID    string
	Quantity  int
}

// RemoveLineCommand deletes a single cart line.
type RemoveLineCommand struct {
	SessionID string
	LineID    string
}

// MoveCartCommand rewrites the whole cart against one target store.
type MoveCartCommand struct {
	SessionID     string
	TargetStoreID string
}

// MoveCartResult reports which product names moved and which had no usable
// offer at the target store. Unresolved lines are dropped, never carried.
type MoveCartResult struct {
	Cart       Cart     `json:"cart"`
	Moved      []string `json:"moved"`
	Unresolved []string `json:"unresolved"`
}

// CartSummary is the priced view of the cart used by the summary and checkout flows.
type CartSummary struct {
	State         CartState  `json:"state"`
	Lines         []CartLine `json:"lines"`
	ItemCount     int        `json:"itemCount"`
	StoreID       string     `json:"storeId,omitempty"`
	StoreName     string     `json:"storeName,omitempty"`
	Subtotal      float64    `json:"subtotal"`
	DeliveryFee   float64    `json:"deliveryFee"`
	FreeDelivery  bool       `json:"freeDelivery"`
	Total         float64    `json:"total"`
	CheckoutReady bool       `json:"checkoutReady"`
}

// CheckoutResult is the order summary stub returned by a successful checkout.
type CheckoutResult struct {
	OrderID     string    `json:"orderId"`
	PlacedAt    time.Time `json:"placedAt"`
	StoreID     string    `json:"storeId"`
	StoreName   string    `json:"storeName"`
	ItemCount   int       `json:"itemCount"`
	Subtotal    float64   `json:"subtotal"`
	DeliveryFee float64   `json:"deliveryFee"`
	Total       float64   `json:"total"`
}

// ProductListQuery narrows and pages the catalog listing.
type ProductListQuery struct {
	Category  string
	PageSize  int
	PageToken string
}

// ProductList is one page of catalog products.
type ProductList struct {
	Products      []Product `json:"products"`
	Total         int       `json:"total"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

// CompareCommand requests one competitor price comparison.
type CompareCommand struct {
	Query    string
	OwnPrice float64
}

// ComparisonReport is the outcome of one competitor price comparison.
// SuggestedPrice is only set when the undercut rule fired; applying it is the
// caller's decision.
type ComparisonReport struct {
	Query          string    `json:"query"`
	OwnPrice       float64   `json:"ownPrice"`
	SuggestedPrice *float64  `json:"suggestedPrice,omitempty"`
	Rank           int       `json:"rank"`
	Participants   int       `json:"participants"`
	Competitors    []Listing `json:"competitors"`
	UsedSampleData bool      `json:"usedSampleData"`
}
