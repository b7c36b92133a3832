package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// AddressHandler serves the caller's saved shipping addresses.
type AddressHandler struct {
	Addresses *repository.AddressRepo
}

func NewAddressHandler(a *repository.AddressRepo) *AddressHandler {
	return &AddressHandler{Addresses: a}
}

type addressReq struct {
	Address    string  `json:"address" validate:"required,min=5,max=500"`
	City       string  `json:"city" validate:"required,max=100"`
	State      string  `json:"state" validate:"required,max=100"`
	Country    string  `json:"country" validate:"required,max=100"`
	PostalCode *string `json:"postal_code"`
	IsDefault  bool    `json:"is_default"`
}

func (h *AddressHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addressReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a := model.Address{
		UserID:     p.ID,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}
	id, err := h.Addresses.Create(ctx, &a)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create address failed"})
	}
	a.ID = id
	return c.JSON(http.StatusCreated, a)
}

func (h *AddressHandler) List(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Addresses.ListByOwner(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list addresses failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"addresses": list})
}

func (h *AddressHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}
	var req addressReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load address failed"})
	}
	if err := auth.Authorize(p, existing.UserID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	a := model.Address{
		ID:         id,
		UserID:     existing.UserID,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}
	if err := h.Addresses.Update(ctx, &a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update address failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

func (h *AddressHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load address failed"})
	}
	if err := auth.Authorize(p, existing.UserID); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Addresses.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete address failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
