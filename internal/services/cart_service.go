package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/quickbasket/api/internal/domain"
	"github.com/quickbasket/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartCatalogRequired    = errors.New("cart service: catalog is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// Delivery pricing constants in rupees.
const (
	// FreeDeliveryThreshold is the subtotal at or above which delivery is free.
	FreeDeliveryThreshold = 199.0
	// BaseDeliveryFee applies below the free threshold before distance surcharges.
	BaseDeliveryFee = 15.0
	// MultiStoreSurcharge applies when cart lines span more than one store.
	// The single-store policy keeps this path unreachable through normal flows.
	MultiStoreSurcharge = 25.0
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to missing dependencies or backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartNotFound indicates the requested cart, product, store, or line does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartConflict indicates the cart could not be updated due to concurrent modifications.
var ErrCartConflict = errors.New("cart service: conflict")

// ErrCartDecisionPending indicates a multi-store decision is outstanding and the
// requested operation is refused until it is resolved.
var ErrCartDecisionPending = errors.New("cart service: multi-store decision pending")

// MultiStoreConflictError reports an add that targets a different store than the
// cart's current lines. The add is parked on the cart as a pending decision.
type MultiStoreConflictError struct {
	CurrentStores []string
	NewStore      string
}

func (e *MultiStoreConflictError) Error() string {
	return fmt.Sprintf("cart service: item from store %q conflicts with cart stores %s",
		e.NewStore, strings.Join(e.CurrentStores, ", "))
}

// CartServiceDeps wires the repositories and ambient dependencies for cart operations.
type CartServiceDeps struct {
	Repository  repositories.CartRepository
	Catalog     repositories.CatalogRepository
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type cartService struct {
	repo    repositories.CartRepository
	catalog repositories.CatalogRepository
	newID   func() string
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Catalog == nil {
		return nil, errCartCatalogRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	service := &cartService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		newID:   idGen,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
	}
	return service, nil
}

// GetCart loads the active cart for the session, creating a new cart when absent.
func (s *cartService) GetCart(ctx context.Context, sessionID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}
	return s.getOrCreate(ctx, sid)
}

// AddItem appends a store offer to the cart, merging quantities for repeated
// adds of the same product. An add from a foreign store parks a pending
// decision and returns a MultiStoreConflictError alongside the saved cart.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	productID := strings.TrimSpace(cmd.ProductID)
	storeID := strings.TrimSpace(cmd.StoreID)
	if sid == "" || productID == "" || storeID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if cmd.Quantity <= 0 {
		return Cart{}, fmt.Errorf("%w: quantity must be positive", ErrCartInvalidInput)
	}

	cart, err := s.getOrCreate(ctx, sid)
	if err != nil {
		return Cart{}, err
	}
	if cart.Pending != nil {
		return cart, ErrCartDecisionPending
	}

	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	option, ok := product.Option(storeID)
	if !ok {
		return Cart{}, fmt.Errorf("%w: product %q is not listed at store %q", ErrCartInvalidInput, productID, storeID)
	}
	if !option.Available {
		return Cart{}, fmt.Errorf("%w: product %q is out of stock at store %q", ErrCartInvalidInput, productID, storeID)
	}

	now := s.now()
	if stores := cart.StoreIDs(); len(stores) > 0 && !containsString(stores, storeID) {
		cart.Pending = &domain.PendingAdd{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   option.Price,
			Quantity:    cmd.Quantity,
			StoreID:     option.StoreID,
			StoreName:   option.StoreName,
			RequestedAt: now,
		}
		cart.UpdatedAt = now
		saved, err := s.repo.SaveCart(ctx, cart)
		if err != nil {
			return Cart{}, s.translateRepoError(err)
		}
		s.logger(ctx, "cart.conflict_raised", map[string]any{
			"sessionID":     sid,
			"productID":     product.ID,
			"newStore":      storeID,
			"currentStores": stores,
		})
		return saved, &MultiStoreConflictError{CurrentStores: stores, NewStore: storeID}
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == product.ID && cart.Lines[i].StoreID == storeID {
			cart.Lines[i].Quantity += cmd.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:          s.newID(),
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   option.Price,
			Quantity:    cmd.Quantity,
			StoreID:     option.StoreID,
			StoreName:   option.StoreName,
			AddedAt:     now,
		})
	}
	cart.UpdatedAt = now

	saved, err := s.repo.SaveCart(ctx, cart)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// ResolveConflict settles the pending decision, either replacing the cart with
// the deferred add or discarding it.
func (s *cartService) ResolveConflict(ctx context.Context, cmd ResolveConflictCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, sid)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	if cart.Pending == nil {
		return Cart{}, fmt.Errorf("%w: no pending decision", ErrCartConflict)
	}

	now := s.now()
	switch cmd.Decision {
	case domain.DecisionClearAndAdd:
		pending := *cart.Pending
		cart.Lines = []domain.CartLine{{
			ID:          s.newID(),
			ProductID:   pending.ProductID,
			ProductName: pending.ProductName,
			UnitPrice:   pending.UnitPrice,
			Quantity:    pending.Quantity,
			StoreID:     pending.StoreID,
			StoreName:   pending.StoreName,
			AddedAt:     now,
		}}
		cart.Pending = nil
	case domain.DecisionCancel:
		cart.Pending = nil
	default:
		return Cart{}, fmt.Errorf("%w: unknown decision %q", ErrCartInvalidInput, cmd.Decision)
	}
	cart.UpdatedAt = now

	saved, err := s.repo.SaveCart(ctx, cart)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	s.logger(ctx, "cart.conflict_resolved", map[string]any{
		"sessionID": sid,
		"decision":  string(cmd.Decision),
	})
	return saved, nil
}

// UpdateQuantity sets a line's quantity. A non-positive quantity removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	lineID := strings.TrimSpace(cmd.LineID)
	if sid == "" || lineID == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, sid)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}

	index := -1
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			index = i
			break
		}
	}
	if index < 0 {
		return Cart{}, fmt.Errorf("%w: line %q", ErrCartNotFound, lineID)
	}

	if cmd.Quantity <= 0 {
		cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
	} else {
		cart.Lines[index].Quantity = cmd.Quantity
	}
	cart.UpdatedAt = s.now()

	saved, err := s.repo.SaveCart(ctx, cart)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

// RemoveLine deletes a single line from the cart.
func (s *cartService) RemoveLine(ctx context.Context, cmd RemoveLineCommand) (Cart, error) {
	return s.UpdateQuantity(ctx, UpdateQuantityCommand{
		SessionID: cmd.SessionID,
		LineID:    cmd.LineID,
		Quantity:  0,
	})
}

// MoveAllToStore rebuilds the cart against the target store's offers. Lines
// whose product has no available offer there are dropped and reported back as
// unresolved.
func (s *cartService) MoveAllToStore(ctx context.Context, cmd MoveCartCommand) (MoveCartResult, error) {
	if s == nil || s.repo == nil {
		return MoveCartResult{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	targetID := strings.TrimSpace(cmd.TargetStoreID)
	if sid == "" || targetID == "" {
		return MoveCartResult{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, sid)
	if err != nil {
		return MoveCartResult{}, s.translateRepoError(err)
	}
	if cart.Pending != nil {
		return MoveCartResult{}, ErrCartDecisionPending
	}

	store, err := s.catalog.FindStore(ctx, targetID)
	if err != nil {
		return MoveCartResult{}, s.translateRepoError(err)
	}

	now := s.now()
	moved := make([]string, 0, len(cart.Lines))
	unresolved := make([]string, 0)
	rebuilt := make([]domain.CartLine, 0, len(cart.Lines))

	for _, line := range cart.Lines {
		product, err := s.catalog.FindProduct(ctx, line.ProductID)
		if err != nil {
			if isRepoNotFound(err) {
				unresolved = append(unresolved, line.ProductName)
				continue
			}
			return MoveCartResult{}, s.translateRepoError(err)
		}

		option, ok := product.Option(store.ID)
		if !ok || !option.Available {
			unresolved = append(unresolved, line.ProductName)
			continue
		}

		collided := false
		for i := range rebuilt {
			if rebuilt[i].ProductID == product.ID {
				rebuilt[i].Quantity += line.Quantity
				collided = true
				break
			}
		}
		if collided {
			continue
		}
		rebuilt = append(rebuilt, domain.CartLine{
			ID:          s.newID(),
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   option.Price,
			Quantity:    line.Quantity,
			StoreID:     store.ID,
			StoreName:   store.Name,
			AddedAt:     now,
		})
		moved = append(moved, product.Name)
	}

	cart.Lines = rebuilt
	cart.UpdatedAt = now

	saved, err := s.repo.SaveCart(ctx, cart)
	if err != nil {
		return MoveCartResult{}, s.translateRepoError(err)
	}
	s.logger(ctx, "cart.moved", map[string]any{
		"sessionID":  sid,
		"targetID":   store.ID,
		"moved":      len(moved),
		"unresolved": len(unresolved),
	})
	return MoveCartResult{Cart: saved, Moved: moved, Unresolved: unresolved}, nil
}

// ClearCart drops the session cart entirely. Clearing an absent cart is a no-op.
func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	if s == nil || s.repo == nil {
		return ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return ErrCartInvalidInput
	}

	if err := s.repo.DeleteCart(ctx, sid); err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return s.translateRepoError(err)
	}
	return nil
}

// Summary prices the cart: subtotal, delivery fee by store distance, total.
// It is refused while a multi-store decision is pending.
func (s *cartService) Summary(ctx context.Context, sessionID string) (CartSummary, error) {
	if s == nil || s.repo == nil {
		return CartSummary{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CartSummary{}, ErrCartInvalidInput
	}

	cart, err := s.getOrCreate(ctx, sid)
	if err != nil {
		return CartSummary{}, err
	}
	if cart.Pending != nil {
		return CartSummary{}, ErrCartDecisionPending
	}
	return s.summarise(ctx, cart)
}

// Checkout validates the cart and returns an order summary stub, emptying the
// cart on success. Fulfilment is out of scope.
func (s *cartService) Checkout(ctx context.Context, sessionID string) (CheckoutResult, error) {
	if s == nil || s.repo == nil {
		return CheckoutResult{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutResult{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, sid)
	if err != nil {
		return CheckoutResult{}, s.translateRepoError(err)
	}
	if cart.Pending != nil {
		return CheckoutResult{}, ErrCartDecisionPending
	}
	if len(cart.Lines) == 0 {
		return CheckoutResult{}, fmt.Errorf("%w: cart is empty", ErrCartInvalidInput)
	}

	summary, err := s.summarise(ctx, cart)
	if err != nil {
		return CheckoutResult{}, err
	}

	result := CheckoutResult{
		OrderID:     s.newID(),
		PlacedAt:    s.now(),
		StoreID:     summary.StoreID,
		StoreName:   summary.StoreName,
		ItemCount:   summary.ItemCount,
		Subtotal:    summary.Subtotal,
		DeliveryFee: summary.DeliveryFee,
		Total:       summary.Total,
	}

	if err := s.repo.DeleteCart(ctx, sid); err != nil && !isRepoNotFound(err) {
		return CheckoutResult{}, s.translateRepoError(err)
	}
	s.logger(ctx, "cart.checkout", map[string]any{
		"sessionID": sid,
		"orderID":   result.OrderID,
		"total":     result.Total,
	})
	return result, nil
}

// ComputeDeliveryFee prices delivery from one store: free at or above the
// threshold, otherwise the base fee plus the store's distance surcharge.
func ComputeDeliveryFee(subtotal float64, tier domain.DistanceTier) float64 {
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return BaseDeliveryFee + distanceSurcharge(tier)
}

func distanceSurcharge(tier domain.DistanceTier) float64 {
	switch tier {
	case domain.DistanceMedium:
		return 10
	case domain.DistanceFar:
		return 20
	default:
		return 0
	}
}

func (s *cartService) summarise(ctx context.Context, cart domain.Cart) (CartSummary, error) {
	summary := CartSummary{
		State:    cart.State(),
		Lines:    cart.Lines,
		Subtotal: cart.Subtotal(),
	}
	if summary.Lines == nil {
		summary.Lines = []domain.CartLine{}
	}
	for _, line := range cart.Lines {
		summary.ItemCount += line.Quantity
	}

	stores := cart.StoreIDs()
	if len(stores) > 0 {
		store, err := s.catalog.FindStore(ctx, stores[0])
		if err != nil {
			return CartSummary{}, s.translateRepoError(err)
		}
		summary.StoreID = store.ID
		summary.StoreName = store.Name
		summary.DeliveryFee = ComputeDeliveryFee(summary.Subtotal, store.Distance)
		if len(stores) > 1 {
			summary.DeliveryFee += MultiStoreSurcharge
		}
		summary.FreeDelivery = summary.DeliveryFee == 0
	}
	summary.Total = summary.Subtotal + summary.DeliveryFee
	summary.CheckoutReady = summary.State == domain.CartStateSingleStore
	return summary, nil
}

func (s *cartService) getOrCreate(ctx context.Context, sessionID string) (Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err == nil {
		return cart, nil
	}
	if !isRepoNotFound(err) {
		return Cart{}, s.translateRepoError(err)
	}

	now := s.now()
	fresh := domain.Cart{
		ID:        s.newID(),
		SessionID: sessionID,
		Lines:     []domain.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	saved, err := s.repo.SaveCart(ctx, fresh)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}
	return saved, nil
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCartNotFound, err)
		case repoErr.IsConflict():
			return ErrCartConflict
		case repoErr.IsUnavailable():
			return ErrCartUnavailable
		}
		return ErrCartUnavailable
	}
	return ErrCartUnavailable
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
