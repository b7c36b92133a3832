package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// ReviewHandler covers public review reads, the owner's writes and the
// superadmin moderation switch.
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Products *repository.ProductRepo
}

func NewReviewHandler(r *repository.ReviewRepo, p *repository.ProductRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Products: p}
}

type reviewReq struct {
	ProductID uint64  `json:"product_id" validate:"required"`
	Rating    uint8   `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment"`
}
type reviewUpdateReq struct {
	Rating  uint8   `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}
type visibilityReq struct {
	IsVisible bool `json:"is_visible"`
}

// ListByProduct is public; hidden reviews are filtered by the query.
func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reviews.ListByProduct(ctx, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reviews failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": list})
}

// Rating returns the visible-review average and count for a product.
func (h *ReviewHandler) Rating(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	avg, count, err := h.Reviews.AverageRating(ctx, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product_id": productID, "average": avg, "count": count})
}

func (h *ReviewHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Products.GetByID(ctx, req.ProductID); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
	}

	r := model.Review{
		UserID:    p.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	id, err := h.Reviews.Create(ctx, &r)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	r.ID = id
	r.IsVisible = true
	return c.JSON(http.StatusCreated, r)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var req reviewUpdateReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load review failed"})
	}
	if err := auth.Authorize(p, existing.UserID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reviews.Update(ctx, id, req.Rating, req.Comment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update review failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load review failed"})
	}
	if err := auth.Authorize(p, existing.UserID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reviews.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// SetVisibility is the superadmin moderation switch.
func (h *ReviewHandler) SetVisibility(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var req visibilityReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reviews.SetVisibility(ctx, id, req.IsVisible); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update visibility failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}
