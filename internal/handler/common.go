// Package handler contains the HTTP layer.  Handlers bind and validate
// request bodies, call repositories or the checkout service, and map
// errors onto status codes.  No business rule lives here.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/middleware"
	"github.com/iliyamo/online-storefront/internal/repository"
	"github.com/iliyamo/online-storefront/internal/service"
)

// dbTimeout bounds every database call made on behalf of a request.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// principal returns the resolved principal.  Routes using it are behind
// the authentication middleware, so a missing principal is a wiring bug
// and answered with 401 via the returned ok flag.
func principal(c echo.Context) (auth.Principal, bool) {
	return middleware.CurrentPrincipal(c)
}

// pathID parses a numeric :param from the route.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// Validator adapts go-playground/validator to Echo's Validator hook so
// handlers can rely on struct tags after Bind.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bindAndValidate runs Bind then Validate.  On failure it returns a
// non-nil *echo.HTTPError so the handler stops before touching any
// state; Echo's error handler renders it.  A rejected body must never
// be processed.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: echo.Map{"error": "invalid body"}}
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return &echo.HTTPError{Code: he.Code, Message: echo.Map{"error": he.Message}}
		}
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: echo.Map{"error": "invalid body"}}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// orderError maps checkout service failures onto status codes shared by
// the order endpoints.
func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cart is empty"})
	case errors.Is(err, repository.ErrInsufficientStock):
		var short *repository.InsufficientStockError
		if errors.As(err, &short) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "insufficient stock",
				"product_id": short.ProductID,
			})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient stock"})
	case errors.Is(err, service.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown order status"})
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case isNoRows(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order operation failed"})
	}
}
