// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer for them.
package queue

// OrderCreatedQueue is the durable queue carrying OrderCreatedEvent.
const OrderCreatedQueue = "order.created"

// OrderCreatedEvent is published after a checkout has been priced and the
// cart emptied. It carries enough to write an audit line without querying
// the primary database.
type OrderCreatedEvent struct {
	OrderID                string           `json:"order_id"`
	CustomerEmail          string           `json:"customer_email"`
	PaymentMethod          string           `json:"payment_method"`
	Installments           *int             `json:"installments,omitempty"`
	TotalCents             int64            `json:"total_cents"`
	InterestCents          int64            `json:"interest_cents"`
	TotalWithInterestCents int64            `json:"total_with_interest_cents"`
	Items                  []OrderEventItem `json:"items"`
	CreatedAt              string           `json:"created_at"`
}

// OrderEventItem is one purchased line inside OrderCreatedEvent.
type OrderEventItem struct {
	ProductID      uint32 `json:"product_id"`
	Name           string `json:"name"`
	Qty            uint32 `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}
