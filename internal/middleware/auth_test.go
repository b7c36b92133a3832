package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
)

// fakeUserLoader serves users from a map, standing in for the user
// repository.
type fakeUserLoader struct {
	users map[uint64]model.User
}

func (f *fakeUserLoader) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func okHandler(c echo.Context) error {
	p, _ := CurrentPrincipal(c)
	return c.JSON(http.StatusOK, echo.Map{"id": p.ID, "role": p.Role})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	loader := &fakeUserLoader{users: map[uint64]model.User{
		1: {ID: 1, Username: "alice", Role: model.RoleCustomer, IsActive: true},
		2: {ID: 2, Username: "mallory", Role: model.RoleCustomer, IsActive: false},
	}}
	mw := Authenticate(tokens, loader)

	t.Run("valid token resolves principal", func(t *testing.T) {
		raw, _, err := tokens.Issue(1, model.RoleCustomer)
		require.NoError(t, err)

		rec := doRequest(t, mw, "Bearer "+raw)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":1`)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := doRequest(t, mw, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer header is rejected", func(t *testing.T) {
		rec := doRequest(t, mw, "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		rec := doRequest(t, mw, "Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := auth.NewTokenService("test-secret", -time.Minute)
		raw, _, err := expired.Issue(1, model.RoleCustomer)
		require.NoError(t, err)

		rec := doRequest(t, mw, "Bearer "+raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deactivated account is rejected despite live token", func(t *testing.T) {
		raw, _, err := tokens.Issue(2, model.RoleCustomer)
		require.NoError(t, err)

		rec := doRequest(t, mw, "Bearer "+raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "inactive")
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		raw, _, err := tokens.Issue(99, model.RoleCustomer)
		require.NoError(t, err)

		rec := doRequest(t, mw, "Bearer "+raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role is taken from the stored user, not the token", func(t *testing.T) {
		// Token carries ADMIN but the account was demoted to CUSTOMER.
		raw, _, err := tokens.Issue(1, model.RoleAdmin)
		require.NoError(t, err)

		rec := doRequest(t, mw, "Bearer "+raw)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), model.RoleCustomer)
	})
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		required string
		want     int
	}{
		{"customer blocked from admin group", model.RoleCustomer, model.RoleAdmin, http.StatusForbidden},
		{"admin admitted to admin group", model.RoleAdmin, model.RoleAdmin, http.StatusOK},
		{"superadmin admitted to admin group", model.RoleSuperadmin, model.RoleAdmin, http.StatusOK},
		{"admin blocked from superadmin group", model.RoleAdmin, model.RoleSuperadmin, http.StatusForbidden},
		{"superadmin admitted to superadmin group", model.RoleSuperadmin, model.RoleSuperadmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/products", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(principalKey, auth.Principal{ID: 7, Role: tc.role})

			require.NoError(t, RequireRole(tc.required)(okHandler)(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	t.Run("missing principal yields 401", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/products", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, RequireRole(model.RoleAdmin)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
