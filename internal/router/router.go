// Package router maps the HTTP surface onto handlers and middleware.
// Route groups mirror the authorization tiers: public, authenticated
// customer, admin (ADMIN or above) and superadmin.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/config"
	"github.com/iliyamo/online-storefront/internal/handler"
	"github.com/iliyamo/online-storefront/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Addresses *handler.AddressHandler
	Reviews   *handler.ReviewHandler
	Payments  *handler.PaymentHandler
	Tracking  *handler.TrackingHandler
	Users     *handler.AdminUserHandler
}

// Register wires all routes.  The rate limiter guards everything under
// /v1 but runs after authentication on protected groups so user-keyed
// limit strategies see the resolved principal; on public routes the key
// falls back to the anonymous component.  The response cache covers the
// public catalog GETs only, where responses are identical for every
// caller.
func Register(e *echo.Echo, h Handlers, tokens *auth.TokenService, users middleware.UserLoader, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	authn := middleware.Authenticate(tokens, users)

	v1 := e.Group("/v1")

	registerPublic(v1, h, limiter, cache)

	// Signup and login are the only unauthenticated auth routes.
	pubAuth := v1.Group("/auth", limiter)
	pubAuth.POST("/signup", h.Auth.Signup)
	pubAuth.POST("/login", h.Auth.Login)

	registerCustomer(v1, h, authn, limiter)
	registerAdmin(v1, h, authn, limiter)
}

// registerPublic mounts the guest-readable catalog.
func registerPublic(g *echo.Group, h Handlers, limiter, cache echo.MiddlewareFunc) {
	pub := g.Group("", limiter, cache)
	pub.GET("/products", h.Catalog.ListProducts)
	pub.GET("/products/:id", h.Catalog.GetProduct)
	pub.GET("/products/sku/:sku", h.Catalog.GetProductBySKU)
	pub.GET("/products/:id/reviews", h.Reviews.ListByProduct)
	pub.GET("/products/:id/rating", h.Reviews.Rating)
	pub.GET("/categories", h.Catalog.ListCategories)
	pub.GET("/categories/:id", h.Catalog.GetCategory)
}
