package middleware

import "github.com/labstack/echo/v4"

// deny writes the shared error envelope. Handlers use handler.Error; the
// middleware package cannot import it without a cycle.
func deny(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]string{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}
