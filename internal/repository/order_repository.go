package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/mercado-storefront/internal/database"
	"github.com/iliyamo/mercado-storefront/internal/model"
)

// OrderRepo is the append-only audit store for checkouts.
type OrderRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewOrderRepo(db *sql.DB, d database.Dialect) *OrderRepo {
	return &OrderRepo{DB: db, Dialect: d}
}

// InsertOrder appends an order header.
func (r *OrderRepo) InsertOrder(ctx context.Context, o model.Order) error {
	var inst sql.NullInt64
	if o.Installments != nil {
		inst = sql.NullInt64{Int64: int64(*o.Installments), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`INSERT INTO orders
		(id, total_cents, payment_method, installments, interest_cents, total_with_interest_cents, created_at)
		VALUES (?,?,?,?,?,?,?)`),
		o.ID, o.TotalCents, o.PaymentMethod, inst, o.InterestCents, o.TotalWithInterest, o.CreatedAt.UTC())
	return err
}

// InsertOrderLine appends one purchased line of an order.
func (r *OrderRepo) InsertOrderLine(ctx context.Context, l model.OrderLine) error {
	_, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("INSERT INTO order_items (order_id, product_id, qty, unit_price_cents) VALUES (?,?,?,?)"),
		l.OrderID, l.ProductID, l.Qty, l.UnitPriceCents)
	return err
}

// ListOrders returns all orders, newest first.
func (r *OrderRepo) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, total_cents, payment_method, installments,
		interest_cents, total_with_interest_cents, created_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var (
			o    model.Order
			inst sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.TotalCents, &o.PaymentMethod, &inst,
			&o.InterestCents, &o.TotalWithInterest, &o.CreatedAt); err != nil {
			return nil, err
		}
		if inst.Valid {
			n := int(inst.Int64)
			o.Installments = &n
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListOrderLines returns the lines of one order in insertion order. An
// unknown order id yields an empty slice.
func (r *OrderRepo) ListOrderLines(ctx context.Context, orderID string) ([]model.OrderLine, error) {
	rows, err := r.DB.QueryContext(ctx,
		r.Dialect.Rebind("SELECT id, order_id, product_id, qty, unit_price_cents FROM order_items WHERE order_id=? ORDER BY id"),
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.OrderLine{}
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Qty, &l.UnitPriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DailyTotals sums order totals per day and payment method, newest day first.
func (r *OrderRepo) DailyTotals(ctx context.Context) ([]model.DailyTotal, error) {
	day := r.Dialect.DayExpr("created_at")
	q := "SELECT " + day + " AS day, payment_method, SUM(total_cents) AS total " +
		"FROM orders GROUP BY " + day + ", payment_method ORDER BY day DESC, payment_method"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyTotal{}
	for rows.Next() {
		var d model.DailyTotal
		if err := rows.Scan(&d.Day, &d.PaymentMethod, &d.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
