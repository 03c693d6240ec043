package model

import "time"

// Order mirrors a row of the `orders` table. Orders are append-only: they
// are written once at checkout and never updated.
//
// Fields:
//
//	ID                – UUID string generated at checkout.
//	TotalCents        – cart subtotal before interest.
//	PaymentMethod     – effective method used ("pix" or "credit").
//	Installments      – installment count (nil for instant payments).
//	InterestCents     – interest added by the installment plan.
//	TotalWithInterest – amount charged to the customer.
//	CreatedAt         – UTC timestamp of checkout.
type Order struct {
	ID                string    `json:"id"`
	TotalCents        int64     `json:"total_cents"`
	PaymentMethod     string    `json:"payment_method"`
	Installments      *int      `json:"installments,omitempty"`
	InterestCents     int64     `json:"interest_cents"`
	TotalWithInterest int64     `json:"total_with_interest_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

// OrderLine mirrors a row of `order_items`. UnitPriceCents is copied from
// the cart line at checkout so later catalog changes do not alter history.
type OrderLine struct {
	ID             int64  `json:"id"`
	OrderID        string `json:"order_id"`
	ProductID      uint32 `json:"product_id"`
	Qty            uint32 `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// DailyTotal is one row of the daily sales report.
type DailyTotal struct {
	Day           string `json:"day"`
	PaymentMethod string `json:"payment_method"`
	TotalCents    int64  `json:"total_cents"`
}
