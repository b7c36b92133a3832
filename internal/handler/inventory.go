package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/repository"
)

// InventoryHandler is the admin surface over the stock ledger.
// Reservation and release never pass through HTTP; they belong to the
// checkout service.
type InventoryHandler struct {
	Inventory *repository.InventoryRepo
}

func NewInventoryHandler(inv *repository.InventoryRepo) *InventoryHandler {
	return &InventoryHandler{Inventory: inv}
}

type createInventoryReq struct {
	ProductID    uint64 `json:"product_id" validate:"required"`
	Quantity     uint32 `json:"quantity"`
	ReorderLevel uint32 `json:"reorder_level"`
}
type restockReq struct {
	Quantity uint32 `json:"quantity" validate:"required,gt=0"`
}
type reorderLevelReq struct {
	ReorderLevel uint32 `json:"reorder_level"`
}

// Create registers a stock counter for a product that lacks one.
func (h *InventoryHandler) Create(c echo.Context) error {
	var req createInventoryReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Inventory.Create(ctx, req.ProductID, req.Quantity, req.ReorderLevel); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "inventory already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create inventory failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "created"})
}

// Get returns the stock counter for one product.
func (h *InventoryHandler) Get(c echo.Context) error {
	productID, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Inventory.GetByProduct(ctx, productID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load inventory failed"})
	}
	return c.JSON(http.StatusOK, inv)
}

// List returns all counters; ?low_stock_only=true narrows to products
// at or under their reorder level.
func (h *InventoryHandler) List(c echo.Context) error {
	lowOnly := c.QueryParam("low_stock_only") == "true"

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Inventory.List(ctx, lowOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list inventory failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inventory": list})
}

// Restock adds stock and records the restock time.
func (h *InventoryHandler) Restock(c echo.Context) error {
	productID, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req restockReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Inventory.Restock(ctx, productID, req.Quantity); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restock failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "restocked"})
}

// UpdateReorderLevel changes the low-stock threshold.
func (h *InventoryHandler) UpdateReorderLevel(c echo.Context) error {
	productID, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req reorderLevelReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Inventory.UpdateReorderLevel(ctx, productID, req.ReorderLevel); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reorder level failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}
