package cart

import (
	"context"
	"errors"
	"time"

	"github.com/fawazzo/lezzet-kapim/models"
)

// Mutation failures surfaced to the shopper as blocking notices.
var (
	// ErrRoleNotPermitted rejects cart mutations from restaurant and
	// delivery accounts; only guests and customers may order.
	ErrRoleNotPermitted = errors.New("restaurant and delivery accounts cannot place orders")

	// ErrInvalidItemData rejects malformed product payloads so a corrupt
	// line never reaches the cart.
	ErrInvalidItemData = errors.New("item is missing its product or restaurant id")
)

// AddOutcome reports the result of an add attempt. When
// NeedsConfirmation is set the cart was left untouched: the new item
// belongs to a different restaurant and the shopper must explicitly
// confirm discarding the current cart via ResolveConflict.
type AddOutcome struct {
	NeedsConfirmation bool
	Cart              models.Cart
}

// Engine owns a single shopper's cart. All mutation goes through it,
// and every in-memory mutation is written back to the store before the
// call returns, so a reload immediately reflects the change.
type Engine struct {
	store Store
	cart  *models.Cart
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		cart:  &models.Cart{},
	}
}

// Hydrate loads the persisted cart, if any. Call once before mutating.
func (e *Engine) Hydrate(ctx context.Context) error {
	saved, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	if saved != nil {
		e.cart = saved
	}
	return nil
}

// Snapshot returns a copy of the current cart for display; consumers
// never mutate engine state through it.
func (e *Engine) Snapshot() models.Cart {
	snap := *e.cart
	snap.Lines = make([]models.CartLine, len(e.cart.Lines))
	copy(snap.Lines, e.cart.Lines)
	return snap
}

func (e *Engine) TotalItemCount() int { return e.cart.TotalItemCount() }
func (e *Engine) Subtotal() float64   { return e.cart.Subtotal() }
func (e *Engine) RestaurantID() string {
	return e.cart.RestaurantID()
}

// AddItem adds quantity units of item to the cart. A line that already
// exists has its quantity increased; a new item is appended. When the
// cart holds items from another restaurant the outcome asks for
// confirmation instead of mutating anything.
func (e *Engine) AddItem(ctx context.Context, role string, item models.MenuItem, quantity int) (*AddOutcome, error) {
	if err := e.gate(role, item); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	if len(e.cart.Lines) > 0 && e.cart.RestaurantID() != item.RestaurantID {
		return &AddOutcome{NeedsConfirmation: true, Cart: e.Snapshot()}, nil
	}

	if i := e.cart.LineIndex(item.ID); i >= 0 {
		e.cart.Lines[i].Quantity += quantity
	} else {
		e.cart.Lines = append(e.cart.Lines, newLine(item, quantity))
	}

	if err := e.persist(ctx); err != nil {
		return nil, err
	}
	return &AddOutcome{Cart: e.Snapshot()}, nil
}

// ResolveConflict completes a cross-restaurant add after the shopper
// decided. Confirmed, the old cart is discarded and replaced with only
// the new item at the requested quantity; declined, nothing changes.
func (e *Engine) ResolveConflict(ctx context.Context, role string, item models.MenuItem, quantity int, confirmed bool) (*AddOutcome, error) {
	if err := e.gate(role, item); err != nil {
		return nil, err
	}
	if !confirmed {
		return &AddOutcome{Cart: e.Snapshot()}, nil
	}
	if quantity < 1 {
		quantity = 1
	}

	e.cart.Lines = []models.CartLine{newLine(item, quantity)}
	if err := e.persist(ctx); err != nil {
		return nil, err
	}
	return &AddOutcome{Cart: e.Snapshot()}, nil
}

// UpdateQuantity sets a line's quantity to exactly newQuantity; zero or
// negative removes the line. Unknown ids are a no-op.
func (e *Engine) UpdateQuantity(ctx context.Context, menuItemID string, newQuantity int) error {
	i := e.cart.LineIndex(menuItemID)
	if i < 0 {
		return nil
	}
	if newQuantity <= 0 {
		e.cart.Lines = append(e.cart.Lines[:i], e.cart.Lines[i+1:]...)
	} else {
		e.cart.Lines[i].Quantity = newQuantity
	}
	return e.persist(ctx)
}

// RemoveItem drops the line entirely; a no-op when absent.
func (e *Engine) RemoveItem(ctx context.Context, menuItemID string) error {
	i := e.cart.LineIndex(menuItemID)
	if i < 0 {
		return nil
	}
	e.cart.Lines = append(e.cart.Lines[:i], e.cart.Lines[i+1:]...)
	return e.persist(ctx)
}

// Clear empties the cart and removes the persisted entry. Safe to call
// on an already-empty cart.
func (e *Engine) Clear(ctx context.Context) error {
	e.cart = &models.Cart{}
	return e.store.Clear(ctx)
}

func (e *Engine) gate(role string, item models.MenuItem) error {
	if role == models.RoleRestaurant || role == models.RoleDelivery {
		return ErrRoleNotPermitted
	}
	if item.ID == "" || item.RestaurantID == "" {
		return ErrInvalidItemData
	}
	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	e.cart.UpdatedAt = time.Now()
	return e.store.Save(ctx, e.cart)
}

func newLine(item models.MenuItem, quantity int) models.CartLine {
	return models.CartLine{
		MenuItemID:   item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		UnitPrice:    item.Price, // missing price defaults to 0, not a pricing policy
		Quantity:     quantity,
	}
}
