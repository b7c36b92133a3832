package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// CatalogHandler serves public catalog reads and the admin write
// surface for products and categories.
type CatalogHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
	Inventory  *repository.InventoryRepo
}

func NewCatalogHandler(p *repository.ProductRepo, cat *repository.CategoryRepo, inv *repository.InventoryRepo) *CatalogHandler {
	return &CatalogHandler{Products: p, Categories: cat, Inventory: inv}
}

type productReq struct {
	SKU         string  `json:"sku" validate:"required,min=1,max=64"`
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	PriceCents  uint64  `json:"price_cents" validate:"required,gt=0"`
	Quantity    uint32  `json:"quantity"`
}
type priceReq struct {
	PriceCents uint64 `json:"price_cents" validate:"required,gt=0"`
}
type categoryReq struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
}

type productResp struct {
	ID          uint64    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PriceCents  uint64    `json:"price_cents"`
	Quantity    uint32    `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

func productToResp(p model.Product) productResp {
	return productResp{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
	}
}

// listParams reads ?offset and ?limit with sane bounds.
func listParams(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

// ----- public reads -----

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	offset, limit := listParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	products, err := h.Products.List(ctx, offset, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list products failed"})
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, productToResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"products": out})
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
	}
	return c.JSON(http.StatusOK, productToResp(p))
}

func (h *CatalogHandler) GetProductBySKU(c echo.Context) error {
	sku := c.Param("sku")
	if sku == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sku"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Products.GetBySKU(ctx, sku)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
	}
	return c.JSON(http.StatusOK, productToResp(p))
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load category failed"})
	}
	return c.JSON(http.StatusOK, cat)
}

// ----- admin writes -----

// CreateProduct inserts the catalog row and an inventory counter in one
// step so every product is reservable from the start.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
	}
	id, err := h.Products.Create(ctx, &p)
	if err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	p.ID = id

	if _, err := h.Inventory.Create(ctx, id, req.Quantity, 0); err != nil && !errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create inventory failed"})
	}
	return c.JSON(http.StatusCreated, productToResp(p))
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
	}
	if err := h.Products.Update(ctx, &p); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

func (h *CatalogHandler) UpdateProductPrice(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req priceReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Products.UpdatePrice(ctx, id, req.PriceCents); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update price failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "price updated"})
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "product is referenced by orders"})
		case isNoRows(err):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat := model.Category{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
	id, err := h.Categories.Create(ctx, &cat)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	cat.ID = id
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat := model.Category{ID: id, Name: req.Name, Description: req.Description, IsActive: req.IsActive}
	if err := h.Categories.Update(ctx, &cat); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete category failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
