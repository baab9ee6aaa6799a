package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fawazzo/lezzet-kapim/models"
)

// Step is the two-phase checkout surface state.
type Step string

const (
	StepCart    Step = "cart"
	StepPayment Step = "payment"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// DeliveryFee is the flat surcharge added to every order's subtotal.
// It is always displayed broken out, never folded into the total.
const DeliveryFee = 50.00

const submissionKeyTTL = 24 * time.Hour

// Abandoned flows (a guest who walked away mid-checkout) are swept so
// the in-memory map cannot grow without bound in a long-running
// process. An evicted shopper simply starts over at the cart step.
const (
	flowTTL    = time.Hour
	sweepEvery = 5 * time.Minute
)

// Totals is the audited price breakdown shown from the payment step on.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// ComputeTotals is the single place subtotal/fee/total come from, so
// displayed figures cannot drift between views.
func ComputeTotals(cart *models.Cart) Totals {
	sub := cart.Subtotal()
	return Totals{
		Subtotal:    sub,
		DeliveryFee: DeliveryFee,
		Total:       sub + DeliveryFee,
	}
}

// OrderGateway is the single outbound create-order call. Failures
// carry the upstream message when the marketplace provided one.
type OrderGateway interface {
	CreateOrder(ctx context.Context, token string, req *models.CreateOrderRequest) (*models.OrderRecord, error)
}

// IdempotencyStore remembers which submission keys already produced an
// order, so a duplicate confirm returns the first order instead of
// placing a second one.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
}

// CartEngine is the slice of the cart engine checkout needs: read the
// lines for the order payload, clear them after a successful one.
type CartEngine interface {
	Snapshot() models.Cart
	Clear(ctx context.Context) error
}

// flow is one shopper's transient checkout state. Never persisted;
// opening the surface starts over at the cart step.
type flow struct {
	step          Step
	method        PaymentMethod
	cardNumber    string
	cardExpiry    string
	cardCVV       string
	submissionKey string
	submitting    bool
	touched       time.Time
}

// FlowState is the flow as the UI sees it.
type FlowState struct {
	Step          Step          `json:"step"`
	Method        PaymentMethod `json:"method,omitempty"`
	CardNumber    string        `json:"card_number"`
	CardExpiry    string        `json:"card_expiry"`
	CardCVV       string        `json:"card_cvv"`
	CardValid     bool          `json:"card_valid"`
	ExpiryWarning bool          `json:"expiry_warning"`
	CanSubmit     bool          `json:"can_submit"`
	Totals        Totals        `json:"totals"`
}

// Manager drives every shopper's checkout flow and performs order
// submission through the gateway.
type Manager struct {
	mu        sync.Mutex
	flows     map[string]*flow
	gateway   OrderGateway
	idem      IdempotencyStore
	logger    *zap.Logger
	clock     func() time.Time
	lastSweep time.Time
}

func NewManager(gateway OrderGateway, idem IdempotencyStore, logger *zap.Logger) *Manager {
	return &Manager{
		flows:     make(map[string]*flow),
		gateway:   gateway,
		idem:      idem,
		logger:    logger,
		clock:     time.Now,
		lastSweep: time.Now(),
	}
}

// Open starts (or restarts) the checkout surface at the cart step,
// dropping any previously entered payment state.
func (m *Manager) Open(shopperID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	m.sweepLocked(now)
	m.flows[shopperID] = &flow{step: StepCart, touched: now}
}

// Close abandons the payment state. The cart itself is untouched.
func (m *Manager) Close(shopperID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, shopperID)
}

// AdvanceToPayment moves cart -> payment. Only a logged-in customer
// with a non-empty cart may advance.
func (m *Manager) AdvanceToPayment(cart *models.Cart, identity *models.Identity, shopperID string) error {
	if identity == nil || identity.Role != models.RoleCustomer {
		return ErrLoginRequired
	}
	if len(cart.Lines) == 0 {
		return ErrCartEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flowLocked(shopperID)
	f.step = StepPayment
	if f.submissionKey == "" {
		f.submissionKey = uuid.NewString()
	}
	return nil
}

// BackToCart abandons unsubmitted payment-field edits and returns to
// the review step. No server interaction happens.
func (m *Manager) BackToCart(shopperID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flowLocked(shopperID).step = StepCart
}

// SelectMethod picks the payment method. Entered card digits survive a
// method switch so the shopper can change their mind without retyping.
func (m *Manager) SelectMethod(shopperID string, method PaymentMethod) error {
	if method != PaymentCreditCard && method != PaymentCashOnDelivery {
		return ErrInvalidMethod
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flowLocked(shopperID).method = method
	return nil
}

// SetCardFields applies live input normalization to whichever card
// fields the request carries. Nil pointers leave a field untouched.
func (m *Manager) SetCardFields(shopperID string, number, expiry, cvv *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flowLocked(shopperID)
	if number != nil {
		f.cardNumber = NormalizeCardNumber(*number)
	}
	if expiry != nil {
		f.cardExpiry = MaskExpiry(*expiry)
	}
	if cvv != nil {
		f.cardCVV = NormalizeCVV(*cvv)
	}
}

// State renders the flow for the UI, totals included.
func (m *Manager) State(shopperID string, cart *models.Cart) FlowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flowLocked(shopperID)

	cardValid := IsCardValid(f.cardNumber, f.cardExpiry, f.cardCVV)
	canSubmit := f.method == PaymentCashOnDelivery ||
		(f.method == PaymentCreditCard && cardValid)

	return FlowState{
		Step:          f.step,
		Method:        f.method,
		CardNumber:    f.cardNumber,
		CardExpiry:    f.cardExpiry,
		CardCVV:       f.cardCVV,
		CardValid:     cardValid,
		ExpiryWarning: len(f.cardExpiry) == 5 && !ExpiryValid(f.cardExpiry),
		CanSubmit:     canSubmit,
		Totals:        ComputeTotals(cart),
	}
}

// Confirm validates the selected payment method, resolves the delivery
// address, and submits the order. The checks run in a fixed order and
// each failure reports its own notice. A failed submission leaves the
// flow in the payment step and the cart intact; success clears both.
func (m *Manager) Confirm(ctx context.Context, shopperID string, eng CartEngine, identity *models.Identity, token string) (*models.OrderRecord, error) {
	m.mu.Lock()
	f := m.flowLocked(shopperID)

	if err := m.validateLocked(f, eng, identity); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if f.submitting {
		m.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.submitting = true
	key := f.submissionKey
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		f.submitting = false
		m.mu.Unlock()
	}

	if m.idem != nil && key != "" {
		if orderID, err := m.idem.GetIdempotency(ctx, key); err == nil && orderID != "" {
			release()
			return nil, &AlreadySubmittedError{OrderID: orderID}
		}
	}

	addr, _ := identity.DeliverableAddress()
	cart := eng.Snapshot()
	req := &models.CreateOrderRequest{
		RestaurantID:    cart.RestaurantID(),
		CustomerAddress: addr,
	}
	for _, line := range cart.Lines {
		req.OrderItems = append(req.OrderItems, models.OrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}

	record, err := m.gateway.CreateOrder(ctx, token, req)
	if err != nil {
		m.logger.Warn("order submission failed",
			zap.String("shopper_id", shopperID),
			zap.String("restaurant_id", req.RestaurantID),
			zap.Error(err),
		)
		release()
		return nil, err
	}

	if m.idem != nil && key != "" {
		if err := m.idem.SetIdempotency(ctx, key, record.ID, submissionKeyTTL); err != nil {
			m.logger.Warn("failed to record submission key", zap.Error(err))
		}
	}
	if err := eng.Clear(ctx); err != nil {
		m.logger.Error("failed to clear cart after order", zap.Error(err))
	}

	m.mu.Lock()
	delete(m.flows, shopperID)
	m.mu.Unlock()

	m.logger.Info("order placed",
		zap.String("shopper_id", shopperID),
		zap.String("order_id", record.ID),
		zap.String("status", record.Status),
	)
	return record, nil
}

// validateLocked runs the ordered submit-time checks: payment method,
// card fields for the card method, then session, cart and address.
func (m *Manager) validateLocked(f *flow, eng CartEngine, identity *models.Identity) error {
	if f.method == "" {
		return ErrNoPaymentMethod
	}
	if f.method == PaymentCreditCard {
		if len(f.cardNumber) != CardNumberLength {
			return errCardNumberLength
		}
		if len(f.cardCVV) < 3 || len(f.cardCVV) > 4 {
			return errCVVLength
		}
		if !ExpiryValid(f.cardExpiry) {
			return errExpiryCutoff
		}
	}
	if identity == nil || identity.Role != models.RoleCustomer {
		return ErrLoginRequired
	}
	if len(eng.Snapshot().Lines) == 0 {
		return ErrCartEmpty
	}
	if _, ok := identity.DeliverableAddress(); !ok {
		// blocked here, before any network call
		return ErrMissingAddress
	}
	return nil
}

// flowLocked returns the shopper's flow, creating a fresh one at the
// cart step if none exists. Touching a flow resets its idle clock.
// Caller holds m.mu.
func (m *Manager) flowLocked(shopperID string) *flow {
	now := m.clock()
	m.sweepLocked(now)

	f, ok := m.flows[shopperID]
	if !ok {
		f = &flow{step: StepCart}
		m.flows[shopperID] = f
	}
	f.touched = now
	return f
}

// sweepLocked evicts flows idle past flowTTL, at most once per
// sweepEvery. In-flight submissions are never evicted. Caller holds
// m.mu.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now

	for id, f := range m.flows {
		if f.submitting {
			continue
		}
		if now.Sub(f.touched) > flowTTL {
			delete(m.flows, id)
		}
	}
}
