package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/config"
	"github.com/iliyamo/online-storefront/internal/model"
)

func newRateContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders?status=pending", nil)
	req.RemoteAddr = "192.0.2.1:4242"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/orders")
	return c
}

func TestBuildRateKey(t *testing.T) {
	t.Run("anonymous requests use the anon user component", func(t *testing.T) {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}
		c := newRateContext(t)

		key := buildRateKey(cfg, c)
		assert.Contains(t, key, "ip:192.0.2.1")
		assert.Contains(t, key, "user:anon")
	})

	t.Run("resolved principal keys the limit per user", func(t *testing.T) {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}
		c := newRateContext(t)
		c.Set(principalKey, auth.Principal{ID: 42, Role: model.RoleCustomer})

		key := buildRateKey(cfg, c)
		assert.Contains(t, key, "user:42")
		assert.NotContains(t, key, "anon")
	})

	t.Run("user strategy isolates callers sharing an address", func(t *testing.T) {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

		a := newRateContext(t)
		a.Set(principalKey, auth.Principal{ID: 1, Role: model.RoleCustomer})
		b := newRateContext(t)
		b.Set(principalKey, auth.Principal{ID: 2, Role: model.RoleCustomer})

		assert.NotEqual(t, buildRateKey(cfg, a), buildRateKey(cfg, b))
	})

	t.Run("default strategy includes ip, user and route", func(t *testing.T) {
		cfg := config.RateLimitConfig{Prefix: "rl"}
		c := newRateContext(t)
		c.Set(principalKey, auth.Principal{ID: 7, Role: model.RoleCustomer})

		key := buildRateKey(cfg, c)
		assert.Contains(t, key, "ip:192.0.2.1")
		assert.Contains(t, key, "user:7")
		assert.Contains(t, key, "route:GET /v1/orders")
	})
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)

	c := newRateContext(t)
	called := false
	err := mw(func(echo.Context) error {
		called = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
}
