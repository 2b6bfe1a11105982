package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/contact-extractor/api/internal/config"
)

const maxTrackedCallers = 4096

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SubmitRateLimiter applies a token bucket per caller. Callers are keyed by
// authenticated client id, falling back to the remote IP.
func SubmitRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var (
		mu      sync.Mutex
		callers = make(map[string]*callerLimiter)
	)

	allow := func(key string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		entry, ok := callers[key]
		if !ok {
			if len(callers) >= maxTrackedCallers {
				for k, v := range callers {
					if now.Sub(v.lastSeen) > cfg.Interval {
						delete(callers, k)
					}
				}
			}
			entry = &callerLimiter{limiter: rate.NewLimiter(rate.Every(perRequest), cfg.Requests)}
			callers[key] = entry
		}
		entry.lastSeen = now
		return entry.limiter.AllowN(now, 1)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ClientIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !allow(key, time.Now()) {
				return deny(c, http.StatusTooManyRequests, "rate_limited", "submission rate limit exceeded")
			}
			return next(c)
		}
	}
}
