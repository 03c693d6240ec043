package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mercado-storefront/internal/model"
	"github.com/iliyamo/mercado-storefront/internal/queue"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders []model.Order
	lines  []model.OrderLine

	insertOrderFn func(model.Order) error
}

func (f *fakeOrders) InsertOrder(_ context.Context, o model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertOrderFn != nil {
		if err := f.insertOrderFn(o); err != nil {
			return err
		}
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrders) InsertOrderLine(_ context.Context, l model.OrderLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, l)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.OrderCreatedEvent
	err    error
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, ev queue.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func newCheckoutFixture() (*Orchestrator, *CartManager, *fakeOrders, *fakePublisher) {
	cart := newTestCart()
	orders := &fakeOrders{}
	pub := &fakePublisher{}
	return NewOrchestrator(cart, orders, pub), cart, orders, pub
}

func TestCheckoutEmptyCart(t *testing.T) {
	o, _, orders, _ := newCheckoutFixture()
	_, err := o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "not-an-email"})
	assert.Equal(t, KindEmptyCart, KindOf(err), "empty cart is reported before email")
	assert.Empty(t, orders.orders)
}

func TestCheckoutInvalidEmailKeepsCart(t *testing.T) {
	o, cart, _, _ := newCheckoutFixture()
	require.NoError(t, cart.Add(1, 1))

	for _, email := range []string{"", "ana", "ana@", "ana@example", "a b@example.com", "@example.com"} {
		_, err := o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: email})
		var se *Error
		require.ErrorAs(t, err, &se, email)
		assert.Equal(t, KindInvalidEmail, se.Kind, email)
		assert.Equal(t, "email", se.Field)
		assert.Equal(t, 422, se.Status())
	}
	items, _ := cart.Snapshot()
	assert.Len(t, items, 1)
}

func TestCheckoutInvalidInstallments(t *testing.T) {
	o, cart, _, _ := newCheckoutFixture()
	require.NoError(t, cart.Add(1, 1))

	for _, n := range []int{0, 13, -1} {
		_, err := o.Checkout(context.Background(), CheckoutRequest{
			PaymentMethod: "credit", Installments: intp(n), CustomerEmail: "ana@example.com",
		})
		var se *Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, KindInvalidInstallments, se.Kind)
		assert.Equal(t, "installments", se.Field)
	}

	// pix ignores installments entirely
	r, err := o.Checkout(context.Background(), CheckoutRequest{
		PaymentMethod: "pix", Installments: intp(13), CustomerEmail: "ana@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, r.Installments)
}

func TestCheckoutDefaultMethodFollowsSubtotal(t *testing.T) {
	o, cart, _, _ := newCheckoutFixture()

	require.NoError(t, cart.Add(7, 5)) // 5 x 999 = 4995
	r, err := o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, MethodPix, r.PaymentMethod)
	assert.Equal(t, "Pago R$ 49,95 via PIX", r.PaymentMessage)

	require.NoError(t, cart.Add(5, 3)) // 1899 each = 5697
	r, err = o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, MethodCredit, r.PaymentMethod)
	require.NotNil(t, r.Installments)
	assert.Equal(t, 1, *r.Installments)
	assert.Equal(t, int64(5697), r.TotalWithInterest)
}

func TestCheckoutInstallmentScenario(t *testing.T) {
	o, cart, orders, pub := newCheckoutFixture()
	require.NoError(t, cart.Add(3, 2))  // 2 x 599
	require.NoError(t, cart.Add(6, 18)) // 18 x 489, subtotal 10000

	r, err := o.Checkout(context.Background(), CheckoutRequest{
		PaymentMethod: "credit", Installments: intp(3), CustomerEmail: " ana@example.com ",
	})
	require.NoError(t, err)
	o.Wait()

	assert.Equal(t, "paid", r.Status)
	assert.Equal(t, int64(10000), r.TotalCents)
	assert.Equal(t, int64(200), r.InterestCents)
	assert.Equal(t, int64(10200), r.TotalWithInterest)
	require.NotNil(t, r.InstallmentValue)
	assert.Equal(t, int64(3400), *r.InstallmentValue)
	require.NotNil(t, r.Installments)
	assert.Equal(t, 3, *r.Installments)
	assert.Equal(t, "Pago R$ 100,00 via Cartão", r.PaymentMessage)
	assert.Equal(t, "ana@example.com", r.CustomerEmail)
	require.Len(t, r.Items, 2)
	_, err = uuid.Parse(r.OrderID)
	assert.NoError(t, err)

	require.Len(t, orders.orders, 1)
	saved := orders.orders[0]
	assert.Equal(t, r.OrderID, saved.ID)
	assert.Equal(t, "credit", saved.PaymentMethod)
	assert.Equal(t, int64(10200), saved.TotalWithInterest)
	require.Len(t, orders.lines, 2)
	assert.Equal(t, model.OrderLine{OrderID: r.OrderID, ProductID: 3, Qty: 2, UnitPriceCents: 599}, orders.lines[0])
	assert.Equal(t, model.OrderLine{OrderID: r.OrderID, ProductID: 6, Qty: 18, UnitPriceCents: 489}, orders.lines[1])

	require.Len(t, pub.events, 1)
	assert.Equal(t, r.OrderID, pub.events[0].OrderID)
	assert.Equal(t, "ana@example.com", pub.events[0].CustomerEmail)
	assert.Len(t, pub.events[0].Items, 2)

	items, _ := cart.Snapshot()
	assert.Empty(t, items)
}

func TestCheckoutClearsCartWhenPersistenceFails(t *testing.T) {
	o, cart, orders, pub := newCheckoutFixture()
	orders.insertOrderFn = func(model.Order) error { return errors.New("disk full") }
	pub.err = errors.New("broker down")
	require.NoError(t, cart.Add(1, 2))

	r, err := o.Checkout(context.Background(), CheckoutRequest{PaymentMethod: "pix", CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	o.Wait()

	assert.Equal(t, int64(1598), r.TotalCents)
	assert.Empty(t, orders.orders)
	assert.Empty(t, orders.lines, "lines are skipped when the header failed")
	items, _ := cart.Snapshot()
	assert.Empty(t, items)
}

func TestCheckoutSurvivesCancelledRequestContext(t *testing.T) {
	o, cart, orders, _ := newCheckoutFixture()
	require.NoError(t, cart.Add(2, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Checkout(ctx, CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	o.Wait()
	assert.Len(t, orders.orders, 1)
}

func TestCheckoutWithoutCollaborators(t *testing.T) {
	cart := newTestCart()
	o := NewOrchestrator(cart, nil, nil)
	require.NoError(t, cart.Add(1, 1))
	r, err := o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(799), r.TotalWithInterest)
}

func TestCheckoutAfterCloseSkipsPublish(t *testing.T) {
	o, cart, orders, pub := newCheckoutFixture()
	require.NoError(t, cart.Add(1, 1))
	_, err := o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)

	o.Close()
	require.Len(t, pub.events, 1, "queued event flushed by Close")

	require.NoError(t, cart.Add(2, 1))
	_, err = o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
	require.NoError(t, err)
	o.Close()

	assert.Len(t, pub.events, 1)
	assert.Len(t, orders.orders, 2, "orders are still recorded after close")
}

func TestCloseRacesWithCheckouts(t *testing.T) {
	o, cart, _, _ := newCheckoutFixture()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cart.Add(1, 1)
			_, _ = o.Checkout(context.Background(), CheckoutRequest{CustomerEmail: "ana@example.com"})
		}()
	}
	o.Close()
	wg.Wait()
	o.Close()
}
