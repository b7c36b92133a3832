package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/queue"
	"github.com/iliyamo/online-storefront/internal/repository"
	"github.com/iliyamo/online-storefront/internal/service"
)

// OrderHandler serves order conversion, listing and the status machine.
type OrderHandler struct {
	Carts    *repository.CartRepo
	Orders   *repository.OrderRepo
	Checkout *service.Checkout
}

func NewOrderHandler(carts *repository.CartRepo, orders *repository.OrderRepo, checkout *service.Checkout) *OrderHandler {
	return &OrderHandler{Carts: carts, Orders: orders, Checkout: checkout}
}

type convertReq struct {
	Address string `json:"address" validate:"required,min=5,max=500"`
}
type setStatusReq struct {
	Status string `json:"status" validate:"required"`
}

type orderLinePart struct {
	ID             uint64 `json:"id"`
	ProductID      uint64 `json:"product_id"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint64 `json:"unit_price_cents"`
}
type orderResp struct {
	ID         uint64          `json:"id"`
	UserID     uint64          `json:"user_id"`
	Address    string          `json:"address"`
	Status     string          `json:"status"`
	TotalCents uint64          `json:"total_cents"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []orderLinePart `json:"lines,omitempty"`
}

func orderToResp(o model.Order, lines []model.OrderItem) orderResp {
	resp := orderResp{
		ID:         o.ID,
		UserID:     o.UserID,
		Address:    o.Address,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, orderLinePart{
			ID:             l.ID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return resp
}

// Convert turns the caller's cart into a pending order.  The placed
// event is published after the transaction committed; a broker outage
// only costs the event, never the order.
func (h *OrderHandler) Convert(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req convertReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cart, err := h.Carts.GetOrCreate(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}

	order, err := h.Checkout.Convert(ctx, p.ID, cart.ID, req.Address)
	if err != nil {
		return orderError(c, err)
	}

	lines, err := h.Orders.Items(ctx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order items failed"})
	}

	go publishPlaced(order, lines)

	return c.JSON(http.StatusCreated, orderToResp(order, lines))
}

func publishPlaced(o model.Order, lines []model.OrderItem) {
	ev := queue.OrderPlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Address:    o.Address,
		TotalCents: o.TotalCents,
		PlacedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, l := range lines {
		ev.Lines = append(ev.Lines, queue.OrderLineEvent{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue.PublishOrderPlaced(ctx, ev) // errors are logged by the publisher
}

// List returns the caller's own orders, optionally filtered by status.
func (h *OrderHandler) List(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := c.QueryParam("status")
	if status != "" && !model.ValidOrderStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.ListByOwner(ctx, p.ID, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list orders failed"})
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToResp(o, nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// Get returns one order with its lines.  Customers may only read their
// own; elevated roles read any.
func (h *OrderHandler) Get(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	if err := auth.Authorize(p, o.UserID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	lines, err := h.Orders.Items(ctx, o.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order items failed"})
	}
	return c.JSON(http.StatusOK, orderToResp(o, lines))
}

// Cancel moves the order to cancelled and releases its stock.
func (h *OrderHandler) Cancel(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Checkout.Cancel(ctx, p, orderID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, orderToResp(o, nil))
}

// SetStatus is the staff route driving the status machine.
func (h *OrderHandler) SetStatus(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req setStatusReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Checkout.SetStatus(ctx, orderID, req.Status)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, orderToResp(o, nil))
}
