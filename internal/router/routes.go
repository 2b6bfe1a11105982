package router

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/auth"
	"github.com/octobees/contact-extractor/api/internal/config"
	"github.com/octobees/contact-extractor/api/internal/handler"
	middlewarepkg "github.com/octobees/contact-extractor/api/internal/middleware"
)

// multipartOverhead leaves room for form boundaries around an upload at the size limit.
const multipartOverhead = 1 << 20

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	Jobs    *handler.JobsHandler
	Uploads *handler.UploadHandler
	Runner  *handler.RunnerHandler
}

// New builds an echo instance with the shared middleware chain and all routes.
func New(cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers, logger logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())
	if cfg.UploadMaxBytes > 0 {
		e.Use(echoMiddleware.BodyLimit(strconv.FormatInt(cfg.UploadMaxBytes+multipartOverhead, 10)))
	}

	Register(e, cfg, jwtManager, handlers)
	return e
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/token", handlers.Auth.Token)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	clientOnly := middlewarepkg.RequireRole(middlewarepkg.RoleClient)
	anyCaller := middlewarepkg.RequireRole(middlewarepkg.RoleClient, middlewarepkg.RoleRunner)
	runnerOnly := middlewarepkg.RequireRole(middlewarepkg.RoleRunner)

	secured.POST("/jobs", handlers.Jobs.Submit, clientOnly, middlewarepkg.SubmitRateLimiter(cfg.RateLimitSubmit))
	secured.POST("/uploads", handlers.Uploads.Upload, clientOnly)
	secured.GET("/jobs/:job_id", handlers.Jobs.Status, anyCaller)
	secured.GET("/jobs/:job_id/results", handlers.Jobs.Results, anyCaller)
	secured.GET("/jobs/:job_id/export", handlers.Jobs.Export, anyCaller)

	if handlers.Runner != nil {
		secured.PUT("/jobs/:job_id/results", handlers.Runner.UpdateResult, runnerOnly)
		secured.PUT("/jobs/:job_id/status", handlers.Runner.UpdateStatus, runnerOnly)
		secured.POST("/jobs/:job_id/finish", handlers.Runner.Finish, runnerOnly)
	}
}
