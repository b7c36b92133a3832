package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/middleware"
	"github.com/iliyamo/online-storefront/internal/model"
)

// registerAdmin mounts the staff surface.  The role middleware is
// rank-aware, so the ADMIN group admits superadmins too; the user
// management group requires SUPERADMIN outright.
func registerAdmin(g *echo.Group, h Handlers, authn, limiter echo.MiddlewareFunc) {
	admin := g.Group("/admin", authn, limiter, middleware.RequireRole(model.RoleAdmin))

	admin.POST("/products", h.Catalog.CreateProduct)
	admin.PUT("/products/:id", h.Catalog.UpdateProduct)
	admin.PUT("/products/:id/price", h.Catalog.UpdateProductPrice)
	admin.DELETE("/products/:id", h.Catalog.DeleteProduct)

	admin.POST("/categories", h.Catalog.CreateCategory)
	admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
	admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)

	admin.POST("/inventory", h.Inventory.Create)
	admin.GET("/inventory", h.Inventory.List)
	admin.GET("/inventory/:product_id", h.Inventory.Get)
	admin.POST("/inventory/:product_id/restock", h.Inventory.Restock)
	admin.PUT("/inventory/:product_id/reorder-level", h.Inventory.UpdateReorderLevel)

	admin.PUT("/orders/:id/status", h.Orders.SetStatus)
	admin.POST("/orders/:id/tracking", h.Tracking.Append)
	admin.PUT("/payments/:id/status", h.Payments.SetStatus)

	super := g.Group("/admin", authn, limiter, middleware.RequireRole(model.RoleSuperadmin))
	super.GET("/users", h.Users.List)
	super.PUT("/users/:id/role", h.Users.UpdateRole)
	super.DELETE("/users/:id", h.Users.Deactivate)
	super.PUT("/reviews/:id/visibility", h.Reviews.SetVisibility)
}
