package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fawazzo/lezzet-kapim/checkout"
	"github.com/fawazzo/lezzet-kapim/clients"
	"github.com/fawazzo/lezzet-kapim/common/logger"
	"github.com/fawazzo/lezzet-kapim/middleware"
)

type CheckoutController struct {
	Flows  *checkout.Manager
	Stores CartStoreProvider
}

func NewCheckoutController(flows *checkout.Manager, stores CartStoreProvider) *CheckoutController {
	return &CheckoutController{Flows: flows, Stores: stores}
}

type SelectMethodRequest struct {
	Method checkout.PaymentMethod `json:"method" binding:"required"`
}

// CardInputRequest carries live card-field keystrokes. Absent fields
// stay as they were.
type CardInputRequest struct {
	CardNumber *string `json:"card_number,omitempty"`
	CardExpiry *string `json:"card_expiry,omitempty"`
	CardCVV    *string `json:"card_cvv,omitempty"`
}

// Open (re)opens the checkout surface at the cart review step.
func (cc *CheckoutController) Open(c *gin.Context) {
	cc.Flows.Open(middleware.ShopperID(c))
	cc.GetState(c)
}

// Close abandons the payment state; the cart survives.
func (cc *CheckoutController) Close(c *gin.Context) {
	cc.Flows.Close(middleware.ShopperID(c))
	c.JSON(http.StatusOK, gin.H{"message": "checkout closed"})
}

// GetState returns the flow with cart snapshot and price breakdown.
func (cc *CheckoutController) GetState(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	snapshot := eng.Snapshot()
	state := cc.Flows.State(middleware.ShopperID(c), &snapshot)
	c.JSON(http.StatusOK, gin.H{
		"checkout":   state,
		"cart":       snapshot,
		"item_count": snapshot.TotalItemCount(),
	})
}

// Advance moves from cart review to payment selection.
func (cc *CheckoutController) Advance(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	snapshot := eng.Snapshot()
	if err := cc.Flows.AdvanceToPayment(&snapshot, middleware.Identity(c), middleware.ShopperID(c)); err != nil {
		respondCheckoutError(c, err)
		return
	}
	state := cc.Flows.State(middleware.ShopperID(c), &snapshot)
	c.JSON(http.StatusOK, gin.H{"checkout": state})
}

// Back returns to cart review, abandoning unsubmitted field edits.
func (cc *CheckoutController) Back(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}
	snapshot := eng.Snapshot()
	cc.Flows.BackToCart(middleware.ShopperID(c))
	state := cc.Flows.State(middleware.ShopperID(c), &snapshot)
	c.JSON(http.StatusOK, gin.H{"checkout": state})
}

// SelectMethod picks credit card or cash on delivery.
func (cc *CheckoutController) SelectMethod(c *gin.Context) {
	var req SelectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := cc.Flows.SelectMethod(middleware.ShopperID(c), req.Method); err != nil {
		respondCheckoutError(c, err)
		return
	}
	cc.GetState(c)
}

// CardInput applies live normalization to card fields and echoes the
// masked values back with validity flags.
func (cc *CheckoutController) CardInput(c *gin.Context) {
	var req CardInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cc.Flows.SetCardFields(middleware.ShopperID(c), req.CardNumber, req.CardExpiry, req.CardCVV)
	cc.GetState(c)
}

// Confirm submits the order. Success clears the cart and points the
// client at the order history view.
func (cc *CheckoutController) Confirm(c *gin.Context) {
	eng, ok := loadEngine(c, cc.Stores)
	if !ok {
		return
	}

	record, err := cc.Flows.Confirm(
		c.Request.Context(),
		middleware.ShopperID(c),
		eng,
		middleware.Identity(c),
		middleware.Token(c),
	)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "order placed successfully",
		"order":    record,
		"redirect": "/customer/orders",
	})
}

func respondCheckoutError(c *gin.Context, err error) {
	var fieldErr *checkout.FieldError
	var already *checkout.AlreadySubmittedError
	var apiErr *clients.APIError

	switch {
	case errors.Is(err, checkout.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrInvalidMethod),
		errors.Is(err, checkout.ErrMissingAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
	case errors.As(err, &already):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "order_id": already.OrderID})
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		// the marketplace's own message is shown verbatim when present
		message := apiErr.Message
		if message == "" {
			message = "order failed: an unknown error occurred"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": message})
	default:
		logger.Error(c, "order submission failed", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "order failed: an unknown error occurred"})
	}
}
