package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mercado-storefront/internal/model"
	"github.com/iliyamo/mercado-storefront/internal/service"
)

// StoreHandler serves the public shopping flow: catalog, cart and checkout.
type StoreHandler struct {
	Catalog  service.Catalog
	Cart     *service.CartManager
	Checkout *service.Orchestrator
}

func NewStoreHandler(cat service.Catalog, cart *service.CartManager, co *service.Orchestrator) *StoreHandler {
	return &StoreHandler{Catalog: cat, Cart: cart, Checkout: co}
}

type addToCartReq struct {
	ProductID uint32 `json:"product_id"`
	Qty       uint32 `json:"qty"`
}

type updateCartReq struct {
	Qty uint32 `json:"qty"`
}

type paymentReq struct {
	Method       string `json:"method"`
	Installments *int   `json:"installments"`
}

// checkoutReq accepts both the nested "payment" object and the older flat
// payment_method/installments fields. The nested form wins.
type checkoutReq struct {
	PaymentMethod string      `json:"payment_method"`
	Installments  *int        `json:"installments"`
	Payment       *paymentReq `json:"payment"`
	CustomerEmail string      `json:"customer_email"`
	Email         string      `json:"email"`
}

func (r checkoutReq) toService() service.CheckoutRequest {
	out := service.CheckoutRequest{
		PaymentMethod: r.PaymentMethod,
		Installments:  r.Installments,
		CustomerEmail: firstNonEmpty(r.CustomerEmail, r.Email),
	}
	if r.Payment != nil {
		if r.Payment.Method != "" {
			out.PaymentMethod = r.Payment.Method
		}
		if r.Payment.Installments != nil {
			out.Installments = r.Payment.Installments
		}
	}
	return out
}

type checkoutResp struct {
	OrderID               string           `json:"order_id"`
	Status                string           `json:"status"`
	TotalCents            int64            `json:"total_cents"`
	Message               string           `json:"message"`
	Items                 []model.CartItem `json:"items"`
	PaymentMessage        string           `json:"payment_message"`
	PaymentMethod         string           `json:"payment_method"`
	Installments          *int             `json:"installments,omitempty"`
	InterestCents         int64            `json:"interest_cents"`
	TotalWithInterest     int64            `json:"total_with_interest_cents"`
	InstallmentValueCents *int64           `json:"installment_value_cents,omitempty"`
	CustomerEmail         string           `json:"customer_email"`
	CreatedAt             time.Time        `json:"created_at"`
}

// Products lists the catalog.
func (h *StoreHandler) Products(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.List())
}

// AddToCart: POST /api/cart {product_id, qty}.
func (h *StoreHandler) AddToCart(c echo.Context) error {
	var req addToCartReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Cart.Add(req.ProductID, req.Qty); err != nil {
		return writeError(c, err)
	}
	return message(c, "item added to cart")
}

// GetCart: GET /api/cart.
func (h *StoreHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Cart.Summary())
}

// UpdateCartItem: PATCH /api/cart/:product_id {qty}. qty 0 removes the line.
func (h *StoreHandler) UpdateCartItem(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid product id")
	}
	var req updateCartReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Cart.SetQuantity(uint32(id), req.Qty); err != nil {
		return writeError(c, err)
	}
	if req.Qty == 0 {
		return message(c, "item removed from cart")
	}
	return message(c, "quantity updated")
}

// ClearCart: DELETE /api/cart/clear.
func (h *StoreHandler) ClearCart(c echo.Context) error {
	h.Cart.Clear()
	return message(c, "cart cleared")
}

// Checkout: POST /api/checkout.
func (h *StoreHandler) CheckoutCart(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	r, err := h.Checkout.Checkout(ctx, req.toService())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutResp{
		OrderID:               r.OrderID,
		Status:                r.Status,
		TotalCents:            r.TotalCents,
		Message:               "order processed successfully",
		Items:                 r.Items,
		PaymentMessage:        r.PaymentMessage,
		PaymentMethod:         string(r.PaymentMethod),
		Installments:          r.Installments,
		InterestCents:         r.InterestCents,
		TotalWithInterest:     r.TotalWithInterest,
		InstallmentValueCents: r.InstallmentValue,
		CustomerEmail:         r.CustomerEmail,
		CreatedAt:             r.CreatedAt,
	})
}
