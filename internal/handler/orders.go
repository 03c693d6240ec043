package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mercado-storefront/internal/model"
)

// OrderReader is the read side of the order log.
type OrderReader interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrderLines(ctx context.Context, orderID string) ([]model.OrderLine, error)
	DailyTotals(ctx context.Context) ([]model.DailyTotal, error)
}

// OrderHandler exposes the order audit log and the daily report (protected).
type OrderHandler struct {
	Orders OrderReader
}

func NewOrderHandler(o OrderReader) *OrderHandler { return &OrderHandler{Orders: o} }

// List: GET /api/orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.ListOrders(ctx)
	if err != nil {
		return internalError(c, "list orders", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Items: GET /api/orders/:id/items. Unknown ids give an empty list.
func (h *OrderHandler) Items(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid order id")
	}
	// order ids are UUIDs; anything else cannot match and must not reach a UUID column
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusOK, []model.OrderLine{})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lines, err := h.Orders.ListOrderLines(ctx, id)
	if err != nil {
		return internalError(c, "list order items", err)
	}
	return c.JSON(http.StatusOK, lines)
}

// Daily: GET /api/reports/daily, totals per day and payment method.
func (h *OrderHandler) Daily(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Orders.DailyTotals(ctx)
	if err != nil {
		return internalError(c, "daily report", err)
	}
	return c.JSON(http.StatusOK, rows)
}
