package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Logging writes a concise structured entry for each HTTP request.
func Logging(logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"request_id": RequestIDFromContext(c),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency":    latency.String(),
			}
			if client := ClientIDFromContext(c); client != "" {
				fields["client_id"] = client
			}
			entry := logger.WithFields(fields)
			if cause, ok := c.Get(ContextKeyError).(error); ok {
				entry = entry.WithError(cause)
			}
			if c.Response().Status >= 500 {
				entry.Error("request")
			} else {
				entry.Info("request")
			}

			return err
		}
	}
}
