package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role names as stored in the users table and carried in the JWT "role"
// claim.
const (
	RoleAdmin     = "ADMIN"
	RoleVolunteer = "VOLUNTEER"
)

// RequireRole enforces that the authenticated user holds one of the given
// roles.  It assumes JWTAuth already placed the role under the "role"
// context key; anything missing or unexpected yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
