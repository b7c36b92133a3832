package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

const (
	cartItemQuery  = `(?s)SELECT ci\.id, ci\.cart_id, ci\.product_id, ci\.quantity.*FROM cart_items ci JOIN carts c`
	inventoryQuery = `SELECT id,product_id,quantity_in_stock,reorder_level,last_restocked_at,created_at,updated_at FROM inventory WHERE product_id=\? LIMIT 1`
)

func newUpdateItemContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPut, "/v1/cart/items/3", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("principal", auth.Principal{ID: 1, Role: model.RoleCustomer})
	return c, rec
}

func expectCartItemRow(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery(cartItemQuery).WithArgs(3).WillReturnRows(
		sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity", "created_at", "updated_at", "user_id"}).
			AddRow(3, 10, 7, 2, now, now, 1))
}

func TestUpdateItemStockRevalidation(t *testing.T) {
	newFixture := func(t *testing.T) (*CartHandler, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewCartHandler(repository.NewCartRepo(db), repository.NewInventoryRepo(db)), mock
	}

	t.Run("enough stock updates the line", func(t *testing.T) {
		h, mock := newFixture(t)
		expectCartItemRow(mock)
		now := time.Now()
		mock.ExpectQuery(inventoryQuery).WithArgs(7).WillReturnRows(
			sqlmock.NewRows([]string{"id", "product_id", "quantity_in_stock", "reorder_level", "last_restocked_at", "created_at", "updated_at"}).
				AddRow(1, 7, 9, 2, nil, now, now))
		mock.ExpectExec(`UPDATE cart_items SET quantity=\? WHERE id=\?`).
			WithArgs(5, 3).WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := newUpdateItemContext(t, `{"quantity":5}`)
		require.NoError(t, h.UpdateItem(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short stock is a conflict and skips the update", func(t *testing.T) {
		h, mock := newFixture(t)
		expectCartItemRow(mock)
		now := time.Now()
		mock.ExpectQuery(inventoryQuery).WithArgs(7).WillReturnRows(
			sqlmock.NewRows([]string{"id", "product_id", "quantity_in_stock", "reorder_level", "last_restocked_at", "created_at", "updated_at"}).
				AddRow(1, 7, 3, 2, nil, now, now))

		c, rec := newUpdateItemContext(t, `{"quantity":5}`)
		require.NoError(t, h.UpdateItem(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "insufficient stock")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing inventory row is not found", func(t *testing.T) {
		h, mock := newFixture(t)
		expectCartItemRow(mock)
		mock.ExpectQuery(inventoryQuery).WithArgs(7).WillReturnError(sql.ErrNoRows)

		c, rec := newUpdateItemContext(t, `{"quantity":5}`)
		require.NoError(t, h.UpdateItem(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inventory outage fails the request instead of passing the check", func(t *testing.T) {
		h, mock := newFixture(t)
		expectCartItemRow(mock)
		mock.ExpectQuery(inventoryQuery).WithArgs(7).WillReturnError(sql.ErrConnDone)

		c, rec := newUpdateItemContext(t, `{"quantity":5}`)
		require.NoError(t, h.UpdateItem(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "load inventory failed")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
