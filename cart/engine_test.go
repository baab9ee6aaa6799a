package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fawazzo/lezzet-kapim/cart"
	"github.com/fawazzo/lezzet-kapim/models"
)

// --- Fake store ---

type fakeStore struct {
	saved  *models.Cart
	saves  int
	clears int
	VolErr error
}

func (s *fakeStore) Load(_ context.Context) (*models.Cart, error) {
	if s.VolErr != nil {
		return nil, s.VolErr
	}
	return s.saved, nil
}

func (s *fakeStore) Save(_ context.Context, c *models.Cart) error {
	if s.VolErr != nil {
		return s.VolErr
	}
	snapshot := *c
	snapshot.Lines = append([]models.CartLine(nil), c.Lines...)
	s.saved = &snapshot
	s.saves++
	return nil
}

func (s *fakeStore) Clear(_ context.Context) error {
	if s.VolErr != nil {
		return s.VolErr
	}
	s.saved = nil
	s.clears++
	return nil
}

// --- Helpers ---

func newEngine(t *testing.T) (*cart.Engine, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	eng := cart.NewEngine(store)
	assert.NoError(t, eng.Hydrate(context.Background()))
	return eng, store
}

func pizza() models.MenuItem {
	return models.MenuItem{ID: "item-pizza", RestaurantID: "rest-1", Name: "Margherita", Price: 40.00}
}

func kebab() models.MenuItem {
	return models.MenuItem{ID: "item-kebab", RestaurantID: "rest-2", Name: "Adana Kebab", Price: 65.50}
}

// --- Tests ---

func TestAddItem_MergesQuantitiesPerItem(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)
	_, err = eng.AddItem(ctx, models.RoleCustomer, pizza(), 3)
	assert.NoError(t, err)

	snap := eng.Snapshot()
	assert.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	assert.Equal(t, 5, eng.TotalItemCount())
}

func TestAddItem_AppendsDistinctItemsInOrder(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	soup := models.MenuItem{ID: "item-soup", RestaurantID: "rest-1", Name: "Lentil Soup", Price: 12.00}
	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 1)
	assert.NoError(t, err)
	_, err = eng.AddItem(ctx, models.RoleCustomer, soup, 1)
	assert.NoError(t, err)

	snap := eng.Snapshot()
	assert.Len(t, snap.Lines, 2)
	assert.Equal(t, "item-pizza", snap.Lines[0].MenuItemID)
	assert.Equal(t, "item-soup", snap.Lines[1].MenuItemID)
	assert.Equal(t, "rest-1", eng.RestaurantID())
}

func TestAddItem_CoercesQuantityToAtLeastOne(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.AddItem(context.Background(), "", pizza(), 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, eng.Snapshot().Lines[0].Quantity)
}

func TestAddItem_RejectsRestaurantAndDeliveryRoles(t *testing.T) {
	for _, role := range []string{models.RoleRestaurant, models.RoleDelivery} {
		eng, store := newEngine(t)

		outcome, err := eng.AddItem(context.Background(), role, pizza(), 1)
		assert.Nil(t, outcome)
		assert.True(t, errors.Is(err, cart.ErrRoleNotPermitted))
		assert.Empty(t, eng.Snapshot().Lines)
		assert.Zero(t, store.saves)
	}
}

func TestAddItem_RejectsMissingIdentifiers(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	noID := models.MenuItem{RestaurantID: "rest-1", Name: "Mystery", Price: 5}
	_, err := eng.AddItem(ctx, models.RoleCustomer, noID, 1)
	assert.True(t, errors.Is(err, cart.ErrInvalidItemData))

	noRestaurant := models.MenuItem{ID: "item-x", Name: "Orphan", Price: 5}
	_, err = eng.AddItem(ctx, models.RoleCustomer, noRestaurant, 1)
	assert.True(t, errors.Is(err, cart.ErrInvalidItemData))

	assert.Empty(t, eng.Snapshot().Lines)
}

func TestAddItem_CrossRestaurantAsksForConfirmation(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)
	savesBefore := store.saves

	outcome, err := eng.AddItem(ctx, models.RoleCustomer, kebab(), 1)
	assert.NoError(t, err)
	assert.True(t, outcome.NeedsConfirmation)

	// nothing changed until the shopper decides
	snap := eng.Snapshot()
	assert.Len(t, snap.Lines, 1)
	assert.Equal(t, "item-pizza", snap.Lines[0].MenuItemID)
	assert.Equal(t, savesBefore, store.saves)
}

func TestResolveConflict_ConfirmedReplacesCart(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)

	outcome, err := eng.ResolveConflict(ctx, models.RoleCustomer, kebab(), 3, true)
	assert.NoError(t, err)
	assert.False(t, outcome.NeedsConfirmation)

	snap := eng.Snapshot()
	assert.Len(t, snap.Lines, 1)
	assert.Equal(t, "item-kebab", snap.Lines[0].MenuItemID)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	assert.Equal(t, "rest-2", eng.RestaurantID())
}

func TestResolveConflict_DeclinedKeepsCart(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)
	savesBefore := store.saves

	outcome, err := eng.ResolveConflict(ctx, models.RoleCustomer, kebab(), 3, false)
	assert.NoError(t, err)

	assert.Len(t, outcome.Cart.Lines, 1)
	assert.Equal(t, "item-pizza", outcome.Cart.Lines[0].MenuItemID)
	assert.Equal(t, 2, outcome.Cart.Lines[0].Quantity)
	assert.Equal(t, savesBefore, store.saves)
}

func TestUpdateQuantity_ZeroAndNegativeRemove(t *testing.T) {
	for _, quantity := range []int{0, -5} {
		eng, _ := newEngine(t)
		ctx := context.Background()

		_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
		assert.NoError(t, err)
		assert.NoError(t, eng.UpdateQuantity(ctx, "item-pizza", quantity))
		assert.Empty(t, eng.Snapshot().Lines)
	}
}

func TestUpdateQuantity_SetsAbsoluteValue(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 7)
	assert.NoError(t, err)
	assert.NoError(t, eng.UpdateQuantity(ctx, "item-pizza", 3))
	assert.Equal(t, 3, eng.Snapshot().Lines[0].Quantity)
}

func TestUpdateQuantity_UnknownItemIsNoOp(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 1)
	assert.NoError(t, err)
	savesBefore := store.saves

	assert.NoError(t, eng.UpdateQuantity(ctx, "item-missing", 4))
	assert.Equal(t, 1, eng.Snapshot().Lines[0].Quantity)
	assert.Equal(t, savesBefore, store.saves)
}

func TestRemoveItem(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)
	assert.NoError(t, eng.RemoveItem(ctx, "item-pizza"))
	assert.Empty(t, eng.Snapshot().Lines)

	// absent id is a no-op
	assert.NoError(t, eng.RemoveItem(ctx, "item-pizza"))
}

func TestSubtotal_RecomputedAfterEveryMutation(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)
	assert.InDelta(t, 80.00, eng.Subtotal(), 0.001)

	assert.NoError(t, eng.UpdateQuantity(ctx, "item-pizza", 3))
	assert.InDelta(t, 120.00, eng.Subtotal(), 0.001)

	assert.NoError(t, eng.RemoveItem(ctx, "item-pizza"))
	assert.Zero(t, eng.Subtotal())
}

func TestClear_IsIdempotent(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 2)
	assert.NoError(t, err)

	assert.NoError(t, eng.Clear(ctx))
	assert.NoError(t, eng.Clear(ctx))
	assert.Empty(t, eng.Snapshot().Lines)
	assert.Equal(t, 2, store.clears)
	assert.Nil(t, store.saved)
}

func TestHydrate_RestoresPersistedCart(t *testing.T) {
	store := &fakeStore{saved: &models.Cart{Lines: []models.CartLine{
		{MenuItemID: "item-pizza", RestaurantID: "rest-1", Name: "Margherita", UnitPrice: 40.00, Quantity: 2},
	}}}

	eng := cart.NewEngine(store)
	assert.NoError(t, eng.Hydrate(context.Background()))
	assert.Equal(t, 2, eng.TotalItemCount())
	assert.Equal(t, "rest-1", eng.RestaurantID())
}

func TestMutationsPersistSynchronously(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	_, err := eng.AddItem(ctx, models.RoleCustomer, pizza(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.saves)
	assert.Len(t, store.saved.Lines, 1)

	assert.NoError(t, eng.UpdateQuantity(ctx, "item-pizza", 4))
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, 4, store.saved.Lines[0].Quantity)
}
