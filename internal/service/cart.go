package service

import (
	"sort"
	"sync"

	"github.com/iliyamo/mercado-storefront/internal/model"
)

// Catalog is the read-only product source the cart validates against.
type Catalog interface {
	List() []model.Product
	Get(id uint32) (model.Product, bool)
}

// ShippingCents is the flat shipping fee. Shipping is free for now.
const ShippingCents int64 = 0

// CartManager is the process-wide shopping cart. One instance is shared by
// every request; readers take the read lock and every mutation validates
// and writes under the write lock.
type CartManager struct {
	mu      sync.RWMutex
	items   map[uint32]model.CartItem
	catalog Catalog
}

func NewCartManager(c Catalog) *CartManager {
	return &CartManager{items: make(map[uint32]model.CartItem), catalog: c}
}

// Add puts qty units of a product in the cart, merging with an existing
// line. The stock ceiling applies to the quantity being added.
func (m *CartManager) Add(productID, qty uint32) error {
	if qty == 0 {
		return newErr(KindInvalidQuantity, "quantity must be greater than zero")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.catalog.Get(productID)
	if !ok {
		return newErr(KindProductNotFound, "product not found")
	}
	if qty > p.Stock {
		return newErr(KindInsufficientStock, "insufficient stock")
	}

	item, ok := m.items[productID]
	if ok {
		item.Qty += qty
	} else {
		item = model.CartItem{ProductID: p.ID, Name: p.Name, UnitPriceCents: p.PriceCents, Qty: qty}
	}
	item.LineTotalCents = item.LineTotal()
	m.items[productID] = item
	return nil
}

// SetQuantity overwrites the quantity of a line already in the cart. A
// quantity of zero removes the line and never fails.
func (m *CartManager) SetQuantity(productID, qty uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if qty == 0 {
		delete(m.items, productID)
		return nil
	}
	p, ok := m.catalog.Get(productID)
	if !ok {
		return newErr(KindProductNotFound, "product not found")
	}
	if qty > p.Stock {
		return newErr(KindInsufficientStock, "insufficient stock")
	}
	item, ok := m.items[productID]
	if !ok {
		return newErr(KindProductNotFound, "product not in cart")
	}
	item.Qty = qty
	item.LineTotalCents = item.LineTotal()
	m.items[productID] = item
	return nil
}

// Snapshot returns a copy of the cart lines ordered by product id together
// with their subtotal.
func (m *CartManager) Snapshot() ([]model.CartItem, int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyLocked()
}

// Summary is Snapshot plus shipping and total.
func (m *CartManager) Summary() model.CartSummary {
	items, subtotal := m.Snapshot()
	return model.CartSummary{
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: ShippingCents,
		TotalCents:    subtotal + ShippingCents,
	}
}

// Clear empties the cart.
func (m *CartManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[uint32]model.CartItem)
}

// DrainIf copies the cart and hands the copy to check while holding the
// write lock. When check returns nil the cart is emptied and the copy is
// returned; otherwise the cart is left untouched and check's error is
// returned. check must not call back into m.
func (m *CartManager) DrainIf(check func(items []model.CartItem, subtotal int64) error) ([]model.CartItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, subtotal := m.copyLocked()
	if check != nil {
		if err := check(items, subtotal); err != nil {
			return nil, 0, err
		}
	}
	m.items = make(map[uint32]model.CartItem)
	return items, subtotal, nil
}

func (m *CartManager) copyLocked() ([]model.CartItem, int64) {
	items := make([]model.CartItem, 0, len(m.items))
	var subtotal int64
	for _, it := range m.items {
		items = append(items, it)
		subtotal += it.LineTotal()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, subtotal
}
