package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

type CheckoutState string

const (
	StateIdle          CheckoutState = "idle"
	StateScriptLoading CheckoutState = "script_loading"
	StateOrderCreating CheckoutState = "order_creating"
	StateWidgetOpen    CheckoutState = "widget_open"
	StateVerifying     CheckoutState = "verifying"
	StateDone          CheckoutState = "done"
	StateFailed        CheckoutState = "failed"
	// StateAcknowledged: the order exists but the widget could not be shown,
	// either for lack of fields or because opening it failed.
	StateAcknowledged CheckoutState = "acknowledged"
	// StateUnverified: the gateway took the payment but the backend could
	// not confirm its signature.
	StateUnverified CheckoutState = "unverified"
)

func (s CheckoutState) Terminal() bool {
	switch s {
	case StateDone, StateFailed, StateAcknowledged, StateUnverified:
		return true
	}
	return false
}

const (
	MerchantName      = "Hotel & Travel Booking"
	msgNoPrice        = "This booking has no valid price."
	msgScriptFailed   = "Failed to load Razorpay script"
	msgStartFailed    = "Failed to start payment"
	msgAcknowledged   = "Order created. Proceed to payment."
	msgWidgetBlocked  = "Order created, but the payment window could not be opened. Proceed to payment."
	msgVerified       = "Payment verified!"
	msgUnverified     = "Payment received, but verification failed."
	msgVerifyFailed   = "Verification failed."
	msgPaymentFailed  = "Payment failed"
	msgDismissed      = "Payment cancelled."
	maxAttemptsKept   = 64
	defaultItemLabel  = "Booking"
	msgLinkFailed     = "Failed to create payment link"
	msgNotAwaitWidget = "This checkout is not waiting for the payment widget."
)

// ScriptLoader makes the gateway's checkout script available. Ensure must
// be idempotent.
type ScriptLoader interface {
	Ensure(ctx context.Context) error
}

type WidgetOptions struct {
	Key         string `json:"key"`
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Widget opens the gateway's payment UI for an attempt. Its outcome comes
// back through Attempt.Deliver.
type Widget interface {
	Open(ctx context.Context, attemptID string, opts WidgetOptions) error
}

type WidgetEventKind string

const (
	WidgetSuccess WidgetEventKind = "success"
	WidgetFailure WidgetEventKind = "failure"
	WidgetDismiss WidgetEventKind = "dismiss"
)

type WidgetEvent struct {
	Kind        WidgetEventKind `json:"kind"`
	Response    map[string]any  `json:"response,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Item is what is being paid for. Missing is shown instead of the generic
// message when Amount is not positive.
type Item struct {
	Amount      float64
	Description string
	Missing     string
}

// Checkout runs payment attempts. Attempts are independent; booking twice
// starts two of them.
type Checkout struct {
	payments domain.PaymentAPI
	scripts  ScriptLoader
	widget   Widget

	mu       sync.Mutex
	attempts map[string]*Attempt
	order    []string
}

func NewCheckout(p domain.PaymentAPI, s ScriptLoader, w Widget) *Checkout {
	return &Checkout{payments: p, scripts: s, widget: w, attempts: map[string]*Attempt{}}
}

// Book starts an attempt and drives it until the widget is open. A
// non-positive amount is rejected before any state exists.
func (c *Checkout) Book(ctx context.Context, it Item) (*Attempt, error) {
	if it.Amount <= 0 {
		msg := it.Missing
		if msg == "" {
			msg = msgNoPrice
		}
		return nil, domain.NewError(domain.KindValidationFailed, msg)
	}
	if it.Description == "" {
		it.Description = defaultItemLabel
	}
	a := &Attempt{ID: uuid.NewString(), Item: it, c: c, state: StateIdle, done: make(chan struct{})}
	c.track(a)

	a.to(StateScriptLoading, "")
	if err := c.scripts.Ensure(ctx); err != nil {
		return a, a.fail(domain.WrapError(domain.KindExternalScriptFailed, msgScriptFailed, err))
	}

	a.to(StateOrderCreating, "")
	order, err := c.payments.CreateOrder(ctx, ToMinor(it.Amount))
	if err != nil {
		return a, a.fail(notice(err, msgStartFailed))
	}
	a.mu.Lock()
	a.order = order
	a.mu.Unlock()

	if !order.WidgetReady() {
		log.Info().Str("attempt", a.ID).Int64("amount", order.Amount).Msg("checkout: order created without widget fields")
		a.to(StateAcknowledged, msgAcknowledged)
		return a, nil
	}

	a.to(StateWidgetOpen, "")
	if err := c.widget.Open(ctx, a.ID, WidgetOptions{
		Key: order.Key, OrderID: order.OrderID, Amount: order.Amount, Currency: order.Currency,
		Name: MerchantName, Description: it.Description,
	}); err != nil {
		log.Warn().Err(err).Str("attempt", a.ID).Str("order", order.OrderID).Msg("checkout: widget did not open")
		a.advance(StateWidgetOpen, StateAcknowledged, msgWidgetBlocked)
	}
	return a, nil
}

// Attempt looks up a recent attempt.
func (c *Checkout) Attempt(id string) (*Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.attempts[id]
	return a, ok
}

// PaymentLink creates a hosted payment page for amount.
func (c *Checkout) PaymentLink(ctx context.Context, amount float64, description string) (string, error) {
	if amount <= 0 {
		return "", domain.NewError(domain.KindValidationFailed, msgNoPrice)
	}
	if description == "" {
		description = defaultItemLabel
	}
	link, err := c.payments.CreatePaymentLink(ctx, ToMinor(amount), description)
	if err != nil {
		return "", notice(err, msgLinkFailed)
	}
	if link.URL == "" {
		return "", domain.NewError(domain.KindPaymentFailed, msgLinkFailed)
	}
	return link.URL, nil
}

func (c *Checkout) track(a *Attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[a.ID] = a
	c.order = append(c.order, a.ID)
	for len(c.order) > maxAttemptsKept {
		delete(c.attempts, c.order[0])
		c.order = c.order[1:]
	}
}

// Attempt is one run through the checkout states.
type Attempt struct {
	ID   string
	Item Item
	c    *Checkout

	mu       sync.Mutex
	state    CheckoutState
	notice   string
	err      error
	order    domain.Order
	verified bool
	done     chan struct{}
	doneOnce sync.Once
}

type AttemptView struct {
	ID       string        `json:"id"`
	State    CheckoutState `json:"state"`
	Notice   string        `json:"notice,omitempty"`
	Error    string        `json:"error,omitempty"`
	OrderID  string        `json:"orderId,omitempty"`
	Amount   int64         `json:"amount,omitempty"`
	Currency string        `json:"currency,omitempty"`
	Verified bool          `json:"verified"`
}

func (a *Attempt) View() AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := AttemptView{
		ID: a.ID, State: a.state, Notice: a.notice, Verified: a.verified,
		OrderID: a.order.OrderID, Amount: a.order.Amount, Currency: a.order.Currency,
	}
	if a.err != nil {
		v.Error = domain.Message(a.err, "")
	}
	return v
}

func (a *Attempt) State() CheckoutState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice
}

func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed once the attempt reaches a final state.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Deliver feeds a widget outcome into an open attempt. Only one success
// callback can move an attempt on to verification.
func (a *Attempt) Deliver(ctx context.Context, ev WidgetEvent) error {
	switch ev.Kind {
	case WidgetSuccess:
		if !a.advance(StateWidgetOpen, StateVerifying, "") {
			return notAwaitingWidget()
		}
		v, err := a.c.payments.Verify(ctx, ev.Response)
		if err != nil {
			return a.fail(domain.WrapError(domain.KindPaymentFailed, domain.Message(err, msgVerifyFailed), err))
		}
		if !v.Verified {
			log.Info().Str("attempt", a.ID).Msg("checkout: payment received but not verified")
			a.to(StateUnverified, msgUnverified)
			return nil
		}
		a.mu.Lock()
		a.verified = true
		a.mu.Unlock()
		a.to(StateDone, msgVerified)
		return nil
	case WidgetFailure:
		desc := ev.Description
		if desc == "" {
			desc = msgPaymentFailed
		}
		a.mu.Lock()
		if a.state != StateWidgetOpen {
			a.mu.Unlock()
			return notAwaitingWidget()
		}
		a.notice = desc
		a.mu.Unlock()
		log.Info().Str("attempt", a.ID).Str("reason", desc).Msg("checkout: payment failed in widget")
		return nil
	case WidgetDismiss:
		if !a.advance(StateWidgetOpen, StateIdle, msgDismissed) {
			return notAwaitingWidget()
		}
		return nil
	}
	return domain.Errorf(domain.KindValidationFailed, "unknown widget event %q", ev.Kind)
}

func notAwaitingWidget() error {
	return domain.NewError(domain.KindValidationFailed, msgNotAwaitWidget)
}

func (a *Attempt) to(s CheckoutState, notice string) {
	a.mu.Lock()
	from := a.state
	a.state = s
	if notice != "" {
		a.notice = notice
	}
	a.mu.Unlock()
	a.moved(from, s)
}

// advance moves to next only while the attempt is still in from, and
// reports whether it did.
func (a *Attempt) advance(from, next CheckoutState, notice string) bool {
	a.mu.Lock()
	if a.state != from {
		a.mu.Unlock()
		return false
	}
	a.state = next
	if notice != "" {
		a.notice = notice
	}
	a.mu.Unlock()
	a.moved(from, next)
	return true
}

func (a *Attempt) moved(from, to CheckoutState) {
	observability.ObserveCheckout(string(to))
	log.Debug().Str("attempt", a.ID).Str("from", string(from)).Str("to", string(to)).Msg("checkout transition")
	// a dismissed widget returns the attempt to idle, which also ends it
	if to.Terminal() || (to == StateIdle && from != StateIdle) {
		a.doneOnce.Do(func() { close(a.done) })
	}
}

func (a *Attempt) fail(err error) error {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
	a.to(StateFailed, domain.Message(err, msgStartFailed))
	if !errors.Is(err, domain.ErrValidationFailed) {
		log.Warn().Err(err).Str("attempt", a.ID).Msg("checkout failed")
	}
	return err
}
