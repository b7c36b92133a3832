package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
)

// RequireRole returns a middleware that enforces a minimum role for a
// route group.  The comparison is rank-aware (CUSTOMER < ADMIN <
// SUPERADMIN), so an ADMIN group admits SUPERADMIN as well.  It assumes
// Authenticate has already stored the principal in the context.
func RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if err := auth.AuthorizeRole(p, required); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
