package checkout

import "errors"

// Blocking notices produced by the checkout flow. Each failure is
// specific and surfaced immediately; none leaves the cart or the flow
// in an inconsistent state.
var (
	ErrLoginRequired   = errors.New("please log in as a customer to place an order")
	ErrCartEmpty       = errors.New("your cart is empty")
	ErrNoPaymentMethod = errors.New("please select a payment method")
	ErrInvalidMethod   = errors.New("unknown payment method")
	ErrMissingAddress  = errors.New("please update your profile with a valid delivery address before ordering")
)

// FieldError is a card-field format or business-rule violation. The
// submit path reports the first failing field and stops.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

var (
	errCardNumberLength = &FieldError{Field: "card_number", Message: "card number must be 16 digits"}
	errCVVLength        = &FieldError{Field: "card_cvv", Message: "CVV must be 3 or 4 digits"}
	errExpiryCutoff     = &FieldError{Field: "card_expiry", Message: "card expiry must be 02/26 or later"}
)

// AlreadySubmittedError means this checkout was confirmed before and
// the marketplace accepted it; retries get the original order back
// instead of a duplicate.
type AlreadySubmittedError struct {
	OrderID string
}

func (e *AlreadySubmittedError) Error() string { return "order already submitted" }

// ErrSubmissionInFlight rejects a confirm racing an outstanding one.
var ErrSubmissionInFlight = errors.New("order submission already in progress")
