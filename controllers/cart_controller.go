package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fawazzo/lezzet-kapim/cart"
	"github.com/fawazzo/lezzet-kapim/checkout"
	"github.com/fawazzo/lezzet-kapim/common/logger"
	"github.com/fawazzo/lezzet-kapim/middleware"
	"github.com/fawazzo/lezzet-kapim/models"
)

// CartStoreProvider hands out the persisted cart slot for one shopper.
type CartStoreProvider interface {
	ForShopper(shopperID string) cart.Store
}

type CartController struct {
	Stores CartStoreProvider
}

func NewCartController(stores CartStoreProvider) *CartController {
	return &CartController{Stores: stores}
}

// AddItemRequest carries the product payload of an add-to-cart action.
// Identifier checks are owned by the cart engine, not binding tags, so
// malformed payloads produce the engine's own notice.
type AddItemRequest struct {
	MenuItemID   string  `json:"menu_item_id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`

	// ConfirmReplace resolves a previously reported cross-restaurant
	// conflict: true discards the old cart, false keeps it.
	ConfirmReplace *bool `json:"confirm_replace,omitempty"`
}

// UpdateQuantityRequest sets an absolute quantity. A pointer so that an
// explicit zero (remove the line) survives binding validation.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// loadEngine hydrates the acting shopper's cart engine.
func loadEngine(c *gin.Context, stores CartStoreProvider) (*cart.Engine, bool) {
	shopperID := middleware.ShopperID(c)
	eng := cart.NewEngine(stores.ForShopper(shopperID))
	if err := eng.Hydrate(c.Request.Context()); err != nil {
		logger.Error(c, "failed to load cart", err, zap.String("shopper_id", shopperID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return nil, false
	}
	return eng, true
}

func cartJSON(snapshot models.Cart) gin.H {
	return gin.H{
		"cart":       snapshot,
		"item_count": snapshot.TotalItemCount(),
		"totals":     checkout.ComputeTotals(&snapshot),
	}
}

// GetCart returns the current cart snapshot with its price breakdown.
func (cc *CartController) GetCart(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartJSON(eng.Snapshot()))
}

// AddItem adds or merges an item into the cart. A cross-restaurant add
// answers 409 until the shopper sends back an explicit decision.
func (cc *CartController) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}

	role := ""
	if identity := middleware.Identity(c); identity != nil {
		role = identity.Role
	}
	item := models.MenuItem{
		ID:           req.MenuItemID,
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Price:        req.Price,
	}

	var outcome *cart.AddOutcome
	var err error
	if req.ConfirmReplace == nil {
		outcome, err = eng.AddItem(c.Request.Context(), role, item, req.Quantity)
	} else {
		outcome, err = eng.ResolveConflict(c.Request.Context(), role, item, req.Quantity, *req.ConfirmReplace)
	}
	if err != nil {
		respondCartError(c, err)
		return
	}

	if outcome.NeedsConfirmation {
		c.JSON(http.StatusConflict, gin.H{
			"requires_confirmation": true,
			"message":               "your cart has items from another restaurant; replace it with this order?",
			"cart":                  outcome.Cart,
		})
		return
	}

	c.JSON(http.StatusOK, cartJSON(outcome.Cart))
}

// UpdateQuantity sets a line's quantity; zero or below removes it.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	menuItemID := c.Param("menu_item_id")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	if err := eng.UpdateQuantity(c.Request.Context(), menuItemID, *req.Quantity); err != nil {
		logger.Error(c, "failed to update cart", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, cartJSON(eng.Snapshot()))
}

// RemoveItem removes a specific line from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	if err := eng.RemoveItem(c.Request.Context(), c.Param("menu_item_id")); err != nil {
		logger.Error(c, "failed to update cart", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, cartJSON(eng.Snapshot()))
}

// ClearCart empties the cart entirely.
func (cc *CartController) ClearCart(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	if err := eng.Clear(c.Request.Context()); err != nil {
		logger.Error(c, "failed to clear cart", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrRoleNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidItemData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c, "failed to save cart", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
	}
}
