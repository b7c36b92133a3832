package middleware // reusable HTTP middleware: identity resolution, roles, rate limiting, caching

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
)

// principalKey is the context key under which the resolved principal is
// stored for handlers.
const principalKey = "principal"

// UserLoader loads a user by id.  It is the one storage dependency of
// the identity resolver; *repository.UserRepo satisfies it in
// production and tests substitute a fake.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate returns an Echo middleware that resolves the bearer token
// on each request to a Principal.  Steps: require a well-formed
// Authorization header, verify the token, then reload the user record
// and reject missing or deactivated accounts with 401 even when the
// token itself is still valid.  Token revocation is expiry-only, but a
// deactivated account loses access at the very next request.
func Authenticate(tokens *auth.TokenService, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			u, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown account"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account inactive"})
			}

			// The role comes from the reloaded user, not the token, so a
			// role change takes effect without waiting for token expiry.
			c.Set(principalKey, auth.Principal{ID: u.ID, Role: u.Role})
			return next(c)
		}
	}
}

// CurrentPrincipal extracts the resolved principal from the context.
// The boolean is false on routes that did not pass Authenticate.
func CurrentPrincipal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
