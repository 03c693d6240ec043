package model

// CartItem is one product's aggregated line in the cart.
// LineTotalCents always equals UnitPriceCents * Qty; it is recomputed
// by the cart on every mutation and never taken from client input.
type CartItem struct {
	ProductID      uint32 `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            uint32 `json:"qty"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// LineTotal computes the line total from price and quantity.
func (i CartItem) LineTotal() int64 {
	return i.UnitPriceCents * int64(i.Qty)
}

// CartSummary is the read-only view returned by GET /api/cart.
type CartSummary struct {
	Items         []CartItem `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
	ShippingCents int64      `json:"shipping_cents"`
	TotalCents    int64      `json:"total_cents"`
}
