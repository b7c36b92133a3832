package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// CartHandler serves the caller's shopping cart.  Every route is behind
// the authentication middleware; the cart is always the principal's own.
type CartHandler struct {
	Carts     *repository.CartRepo
	Inventory *repository.InventoryRepo
}

func NewCartHandler(carts *repository.CartRepo, inv *repository.InventoryRepo) *CartHandler {
	return &CartHandler{Carts: carts, Inventory: inv}
}

type addItemReq struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  uint32 `json:"quantity" validate:"required,gt=0"`
}
type updateItemReq struct {
	Quantity uint32 `json:"quantity" validate:"required,gt=0"`
}

type cartItemPart struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}
type cartResp struct {
	ID    uint64         `json:"id"`
	Items []cartItemPart `json:"items"`
}

func cartItemParts(items []model.CartItem) []cartItemPart {
	out := make([]cartItemPart, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemPart{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// Get returns the caller's cart, creating an empty one on first access.
func (h *CartHandler) Get(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cart, err := h.Carts.GetOrCreate(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	items, err := h.Carts.Items(ctx, cart.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart items failed"})
	}
	return c.JSON(http.StatusOK, cartResp{ID: cart.ID, Items: cartItemParts(items)})
}

// AddItem adds quantity of a product to the caller's cart.  Adding a
// product already in the cart merges into the existing line.  The stock
// check here is advisory; the binding check happens at conversion.
func (h *CartHandler) AddItem(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addItemReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Inventory.GetByProduct(ctx, req.ProductID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load inventory failed"})
	}
	if inv.QuantityInStock < req.Quantity {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"product_id": req.ProductID,
			"available":  inv.QuantityInStock,
		})
	}

	cart, err := h.Carts.GetOrCreate(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	if err := h.Carts.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add item failed"})
	}

	items, err := h.Carts.Items(ctx, cart.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart items failed"})
	}
	return c.JSON(http.StatusOK, cartResp{ID: cart.ID, Items: cartItemParts(items)})
}

// UpdateItem replaces a line's quantity.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req updateItemReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	item, ownerID, err := h.Carts.GetItem(ctx, itemID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart item failed"})
	}
	if err := auth.Authorize(p, ownerID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	inv, err := h.Inventory.GetByProduct(ctx, item.ProductID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load inventory failed"})
	}
	if inv.QuantityInStock < req.Quantity {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"product_id": item.ProductID,
			"available":  inv.QuantityInStock,
		})
	}

	if err := h.Carts.UpdateItemQuantity(ctx, itemID, req.Quantity); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// RemoveItem deletes one line from the caller's cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, ownerID, err := h.Carts.GetItem(ctx, itemID)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart item failed"})
	}
	if err := auth.Authorize(p, ownerID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Carts.RemoveItem(ctx, itemID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove item failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// Clear empties the caller's cart outside of a conversion.
func (h *CartHandler) Clear(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cart, err := h.Carts.GetOrCreate(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	if err := h.Carts.Clear(ctx, cart.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear cart failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cleared"})
}
