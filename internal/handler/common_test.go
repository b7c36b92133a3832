package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/config"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
	"github.com/iliyamo/online-storefront/internal/service"
)

func newTestContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// requireBadRequest asserts that bind/validation failed with a non-nil
// 400 error and that nothing was written yet: rejection must surface as
// an error the handler returns, not as a committed response.
func requireBadRequest(t *testing.T, c echo.Context, err error) {
	t.Helper()
	require.Error(t, err)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.False(t, c.Response().Committed)
}

func TestBindAndValidate(t *testing.T) {
	t.Run("valid body passes", func(t *testing.T) {
		c, _ := newTestContext(t, `{"address":"12 Main Street"}`)
		var req convertReq
		require.NoError(t, bindAndValidate(c, &req))
		assert.Equal(t, "12 Main Street", req.Address)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		c, _ := newTestContext(t, `{}`)
		var req convertReq
		requireBadRequest(t, c, bindAndValidate(c, &req))
	})

	t.Run("field under min length fails", func(t *testing.T) {
		c, _ := newTestContext(t, `{"address":"x"}`)
		var req convertReq
		requireBadRequest(t, c, bindAndValidate(c, &req))
	})

	t.Run("malformed json fails", func(t *testing.T) {
		c, _ := newTestContext(t, `{"address":`)
		var req convertReq
		requireBadRequest(t, c, bindAndValidate(c, &req))
	})

	t.Run("rating bounds are enforced", func(t *testing.T) {
		c, _ := newTestContext(t, `{"product_id":1,"rating":6}`)
		var req reviewReq
		requireBadRequest(t, c, bindAndValidate(c, &req))
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		c, _ := newTestContext(t, `{"product_id":1,"quantity":0}`)
		var req addItemReq
		requireBadRequest(t, c, bindAndValidate(c, &req))
	})

	t.Run("error renders as a 400 json body", func(t *testing.T) {
		c, rec := newTestContext(t, `{}`)
		var req convertReq
		err := bindAndValidate(c, &req)
		require.Error(t, err)

		c.Echo().HTTPErrorHandler(err, c)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	})
}

// The handlers below are constructed with nil repositories: if a
// rejected body did not stop execution, the call would panic on the
// first storage access instead of returning the 400 error.

func TestAddItemStopsOnInvalidBody(t *testing.T) {
	h := NewCartHandler(nil, nil)
	c, _ := newTestContext(t, `{"product_id":1,"quantity":0}`)
	c.Set("principal", auth.Principal{ID: 1, Role: model.RoleCustomer})

	requireBadRequest(t, c, h.AddItem(c))
}

func TestConvertStopsOnInvalidBody(t *testing.T) {
	h := NewOrderHandler(nil, nil, nil)
	c, _ := newTestContext(t, `{"address":"x"}`)
	c.Set("principal", auth.Principal{ID: 1, Role: model.RoleCustomer})

	requireBadRequest(t, c, h.Convert(c))
}

func TestCreateAddressStopsOnInvalidBody(t *testing.T) {
	h := NewAddressHandler(nil)
	c, _ := newTestContext(t, `{"address":"12 Main Street"}`) // city/state/country missing
	c.Set("principal", auth.Principal{ID: 1, Role: model.RoleCustomer})

	requireBadRequest(t, c, h.Create(c))
}

func TestSignupStopsOnInvalidBody(t *testing.T) {
	h := NewAuthHandler(config.Config{}, nil, nil, nil)
	c, _ := newTestContext(t, `{"username":"alice","email":"alice@example.com","password":"short"}`)

	requireBadRequest(t, c, h.Signup(c))
}

func TestOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{"insufficient stock", &repository.InsufficientStockError{ProductID: 7}, http.StatusConflict},
		{"bad transition", fmt.Errorf("%w: pending -> shipped", service.ErrBadTransition), http.StatusConflict},
		{"unknown status", fmt.Errorf("%w: %q", service.ErrInvalidStatus, "misplaced"), http.StatusBadRequest},
		{"forbidden", fmt.Errorf("%w: ownership", auth.ErrForbidden), http.StatusForbidden},
		{"not found", sql.ErrNoRows, http.StatusNotFound},
		{"opaque failure", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, `{}`)
			require.NoError(t, orderError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	t.Run("stock failure names the product", func(t *testing.T) {
		c, rec := newTestContext(t, `{}`)
		require.NoError(t, orderError(c, &repository.InsufficientStockError{ProductID: 7}))
		assert.Contains(t, rec.Body.String(), `"product_id":7`)
	})
}
