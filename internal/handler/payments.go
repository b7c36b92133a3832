package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// PaymentHandler records payments against orders.  These are
// bookkeeping rows only; no gateway is called.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Orders   *repository.OrderRepo
}

func NewPaymentHandler(p *repository.PaymentRepo, o *repository.OrderRepo) *PaymentHandler {
	return &PaymentHandler{Payments: p, Orders: o}
}

type paymentReq struct {
	AmountCents uint64 `json:"amount_cents" validate:"required,gt=0"`
}
type paymentStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed"`
}

// loadOwnedOrder fetches the order and enforces owner-or-elevated.
func (h *PaymentHandler) loadOwnedOrder(c echo.Context) (model.Order, bool) {
	p, ok := principal(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.Order{}, false
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		return model.Order{}, false
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
		}
		return model.Order{}, false
	}
	if err := auth.Authorize(p, o.UserID); err != nil {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.Order{}, false
	}
	return o, true
}

// Create records a pending payment with a generated transaction id.
func (h *PaymentHandler) Create(c echo.Context) error {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return nil
	}
	var req paymentReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pay := model.Payment{
		OrderID:       o.ID,
		TransactionID: uuid.NewString(),
		Status:        model.PaymentPending,
		AmountCents:   req.AmountCents,
	}
	id, err := h.Payments.Create(ctx, &pay)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate transaction"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create payment failed"})
	}
	pay.ID = id
	return c.JSON(http.StatusCreated, pay)
}

// ListByOrder returns the order's payment records.
func (h *PaymentHandler) ListByOrder(c echo.Context) error {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Payments.ListByOrder(ctx, o.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list payments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": list})
}

// SetStatus is the staff route marking a payment completed or failed.
func (h *PaymentHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	var req paymentStatusReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Payments.SetStatus(ctx, id, req.Status); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update payment failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}
