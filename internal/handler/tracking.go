package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// TrackingHandler serves the append-only tracking history of an order.
type TrackingHandler struct {
	Tracking *repository.TrackingRepo
	Orders   *repository.OrderRepo
}

func NewTrackingHandler(t *repository.TrackingRepo, o *repository.OrderRepo) *TrackingHandler {
	return &TrackingHandler{Tracking: t, Orders: o}
}

type trackingReq struct {
	Status   string  `json:"status" validate:"required,max=100"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

func (h *TrackingHandler) authorizeRead(c echo.Context) (uint64, bool) {
	p, ok := principal(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, false
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		return 0, false
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
		return 0, false
	}
	if err := auth.Authorize(p, o.UserID); err != nil {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return 0, false
	}
	return orderID, true
}

// History returns the full tracking trail, oldest first.
func (h *TrackingHandler) History(c echo.Context) error {
	orderID, ok := h.authorizeRead(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Tracking.History(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tracking failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tracking": list})
}

// Latest returns the most recent tracking entry.
func (h *TrackingHandler) Latest(c echo.Context) error {
	orderID, ok := h.authorizeRead(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entry, err := h.Tracking.Latest(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no tracking entries"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tracking failed"})
	}
	return c.JSON(http.StatusOK, entry)
}

// Append is the staff route adding a tracking entry.
func (h *TrackingHandler) Append(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req trackingReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Orders.GetByID(ctx, orderID); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}

	entry := model.TrackingEntry{
		OrderID:  orderID,
		Status:   req.Status,
		Location: req.Location,
		Notes:    req.Notes,
	}
	id, err := h.Tracking.Append(ctx, &entry)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "append tracking failed"})
	}
	entry.ID = id
	return c.JSON(http.StatusCreated, entry)
}
