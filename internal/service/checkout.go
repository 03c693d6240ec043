package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/mercado-storefront/internal/model"
	"github.com/iliyamo/mercado-storefront/internal/queue"
)

// CreditThresholdCents is the subtotal above which checkout defaults to
// paying by credit when the client names no method.
const CreditThresholdCents int64 = 5000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OrderStore is the append-only order log.
type OrderStore interface {
	InsertOrder(ctx context.Context, o model.Order) error
	InsertOrderLine(ctx context.Context, l model.OrderLine) error
}

// EventPublisher announces completed orders.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error
}

// CheckoutRequest is the input to Checkout. An empty PaymentMethod lets the
// subtotal pick one.
type CheckoutRequest struct {
	PaymentMethod string
	Installments  *int
	CustomerEmail string
}

// Receipt is returned by a successful checkout.
type Receipt struct {
	OrderID           string
	Status            string
	Items             []model.CartItem
	TotalCents        int64
	PaymentMethod     Method
	Installments      *int
	InterestCents     int64
	TotalWithInterest int64
	InstallmentValue  *int64
	PaymentMessage    string
	CustomerEmail     string
	CreatedAt         time.Time
}

// Orchestrator turns the shared cart into a paid order.
type Orchestrator struct {
	cart      *CartManager
	orders    OrderStore
	publisher EventPublisher

	now     func() time.Time
	timeout time.Duration

	mu      sync.Mutex // guards closed and pending.Add
	closed  bool
	pending sync.WaitGroup
}

// NewOrchestrator wires checkout. publisher may be nil to disable events.
func NewOrchestrator(cart *CartManager, orders OrderStore, publisher EventPublisher) *Orchestrator {
	return &Orchestrator{
		cart:      cart,
		orders:    orders,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		timeout:   5 * time.Second,
	}
}

// Checkout validates the request against the cart, empties the cart,
// prices the payment and records the order. Storage and broker failures
// after the cart is emptied are logged only; the customer still gets a
// receipt.
func (o *Orchestrator) Checkout(ctx context.Context, req CheckoutRequest) (Receipt, error) {
	email := strings.TrimSpace(req.CustomerEmail)

	var (
		method       Method
		installments *int
	)
	items, subtotal, err := o.cart.DrainIf(func(items []model.CartItem, subtotal int64) error {
		if len(items) == 0 {
			return newErr(KindEmptyCart, "cart is empty")
		}
		if !emailPattern.MatchString(email) {
			return fieldErr(KindInvalidEmail, "email", "invalid email format")
		}
		method = effectiveMethod(req.PaymentMethod, subtotal)
		if method == MethodCredit {
			n := MinInstallments
			if req.Installments != nil {
				n = *req.Installments
			}
			if n < MinInstallments || n > MaxInstallments {
				return fieldErr(KindInvalidInstallments, "installments", "installments must be between 1 and 12")
			}
			installments = &n
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	pr := ComputePayment(subtotal, method, installments)
	r := Receipt{
		OrderID:           uuid.NewString(),
		Status:            "paid",
		Items:             items,
		TotalCents:        subtotal,
		PaymentMethod:     method,
		Installments:      pr.Installments,
		InterestCents:     pr.InterestCents,
		TotalWithInterest: pr.TotalWithInterest,
		InstallmentValue:  pr.InstallmentValue,
		PaymentMessage:    pr.Message,
		CustomerEmail:     email,
		CreatedAt:         o.now(),
	}

	// the cart is already gone, so a cancelled request must not stop the audit write
	bg := context.WithoutCancel(ctx)
	o.persist(bg, r)
	o.publish(bg, r)
	return r, nil
}

// Wait blocks until queued order events have been handed to the broker.
func (o *Orchestrator) Wait() { o.pending.Wait() }

// Close stops queueing order events and waits for those already queued.
// Checkouts that finish afterwards are still recorded but publish nothing.
// It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.pending.Wait()
}

func effectiveMethod(requested string, subtotal int64) Method {
	if strings.TrimSpace(requested) != "" {
		return ParseMethod(requested)
	}
	if subtotal > CreditThresholdCents {
		return MethodCredit
	}
	return MethodPix
}

func (o *Orchestrator) persist(ctx context.Context, r Receipt) {
	if o.orders == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	err := o.orders.InsertOrder(ctx, model.Order{
		ID:                r.OrderID,
		TotalCents:        r.TotalCents,
		PaymentMethod:     string(r.PaymentMethod),
		Installments:      r.Installments,
		InterestCents:     r.InterestCents,
		TotalWithInterest: r.TotalWithInterest,
		CreatedAt:         r.CreatedAt,
	})
	if err != nil {
		log.Printf("checkout: save order %s failed: %v", r.OrderID, err)
		return
	}
	for _, it := range r.Items {
		line := model.OrderLine{OrderID: r.OrderID, ProductID: it.ProductID, Qty: it.Qty, UnitPriceCents: it.UnitPriceCents}
		if err := o.orders.InsertOrderLine(ctx, line); err != nil {
			log.Printf("checkout: save line product=%d of order %s failed: %v", it.ProductID, r.OrderID, err)
		}
	}
	log.Printf("checkout: order %s saved with %d lines", r.OrderID, len(r.Items))
}

func (o *Orchestrator) publish(ctx context.Context, r Receipt) {
	if o.publisher == nil {
		return
	}
	ev := queue.OrderCreatedEvent{
		OrderID:                r.OrderID,
		CustomerEmail:          r.CustomerEmail,
		PaymentMethod:          string(r.PaymentMethod),
		Installments:           r.Installments,
		TotalCents:             r.TotalCents,
		InterestCents:          r.InterestCents,
		TotalWithInterestCents: r.TotalWithInterest,
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range r.Items {
		ev.Items = append(ev.Items, queue.OrderEventItem{
			ProductID: it.ProductID, Name: it.Name, Qty: it.Qty, UnitPriceCents: it.UnitPriceCents,
		})
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		log.Printf("checkout: shutting down, order %s not published", r.OrderID)
		return
	}
	o.pending.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		if err := o.publisher.PublishOrderCreated(ctx, ev); err != nil {
			log.Printf("checkout: publish order %s failed: %v", r.OrderID, err)
		}
	}()
}
