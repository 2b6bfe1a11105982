package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated request carries one of the expected roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyClientRole).(string)
			if !ok || value == "" {
				return deny(c, http.StatusForbidden, "forbidden", "missing role")
			}
			for _, role := range roles {
				if value == role {
					return next(c)
				}
			}
			return deny(c, http.StatusForbidden, "forbidden", "insufficient permissions")
		}
	}
}
