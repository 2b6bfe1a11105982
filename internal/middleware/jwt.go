package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/contact-extractor/api/internal/auth"
)

// JWT validates bearer tokens and stores client metadata in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return deny(c, http.StatusUnauthorized, "unauthorized", "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return deny(c, http.StatusUnauthorized, "unauthorized", "invalid authorization header")
			}

			claims, err := manager.ParseToken(parts[1])
			if err != nil {
				return deny(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			}

			c.Set(ContextKeyClientID, claims.Subject)
			c.Set(ContextKeyClientRole, claims.Role)

			return next(c)
		}
	}
}

// ClientIDFromContext returns the authenticated client id, if any.
func ClientIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyClientID).(string); ok {
		return val
	}
	return ""
}
