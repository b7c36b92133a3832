package router

import (
	"github.com/labstack/echo/v4"
)

// registerCustomer mounts routes for any authenticated account.  The
// limiter sits behind authentication so its per-user key resolves.
// Ownership of individual resources is enforced inside the handlers via
// the access guard, so admins can act on customers' behalf here.
func registerCustomer(g *echo.Group, h Handlers, authn, limiter echo.MiddlewareFunc) {
	r := g.Group("", authn, limiter)

	r.POST("/auth/logout", h.Auth.Logout)
	r.GET("/me", h.Auth.Me)

	r.GET("/cart", h.Cart.Get)
	r.POST("/cart/items", h.Cart.AddItem)
	r.PUT("/cart/items/:id", h.Cart.UpdateItem)
	r.DELETE("/cart/items/:id", h.Cart.RemoveItem)
	r.DELETE("/cart", h.Cart.Clear)

	r.POST("/orders", h.Orders.Convert)
	r.GET("/orders", h.Orders.List)
	r.GET("/orders/:id", h.Orders.Get)
	r.POST("/orders/:id/cancel", h.Orders.Cancel)

	r.POST("/addresses", h.Addresses.Create)
	r.GET("/addresses", h.Addresses.List)
	r.PUT("/addresses/:id", h.Addresses.Update)
	r.DELETE("/addresses/:id", h.Addresses.Delete)

	r.POST("/reviews", h.Reviews.Create)
	r.PUT("/reviews/:id", h.Reviews.Update)
	r.DELETE("/reviews/:id", h.Reviews.Delete)

	r.POST("/orders/:id/payments", h.Payments.Create)
	r.GET("/orders/:id/payments", h.Payments.ListByOrder)

	r.GET("/orders/:id/tracking", h.Tracking.History)
	r.GET("/orders/:id/tracking/latest", h.Tracking.Latest)
}
