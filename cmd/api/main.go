package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/auth"
	"github.com/octobees/contact-extractor/api/internal/config"
	"github.com/octobees/contact-extractor/api/internal/database"
	"github.com/octobees/contact-extractor/api/internal/handler"
	"github.com/octobees/contact-extractor/api/internal/logging"
	"github.com/octobees/contact-extractor/api/internal/repository"
	"github.com/octobees/contact-extractor/api/internal/router"
	"github.com/octobees/contact-extractor/api/internal/runner"
	"github.com/octobees/contact-extractor/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}

	var store repository.JobStore = repository.NewMemoryJobStore()
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			logger.WithError(err).Fatal("failed to connect database")
		}
		if err := database.Migrate(ctx, pool); err != nil {
			cancel()
			logger.WithError(err).Fatal("failed to migrate database")
		}
		cancel()
		defer pool.Close()
		store = repository.NewPGXJobStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, jobs are kept in memory")
	}

	opts, err := jobServiceOptions(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to configure runner client")
	}
	if len(cfg.Clients) == 0 {
		logger.Warn("no API clients configured, token endpoint will reject every caller")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	jobService := service.NewJobService(store, opts...)
	exportService := service.NewExportService(store, logger)
	authService := service.NewAuthService(cfg.Clients, jwtManager)

	e := router.New(cfg, jwtManager, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Jobs:    handler.NewJobsHandler(jobService, exportService),
		Uploads: handler.NewUploadHandler(cfg.UploadMaxBytes),
		Runner:  handler.NewRunnerHandler(jobService),
	}, logger)

	janitor := service.NewJanitor(jobService, store, service.JanitorConfig{
		Interval:   cfg.JanitorInterval,
		StaleAfter: cfg.StalePending,
		Retention:  cfg.JobRetention,
	}, logger)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitor.Start(janitorCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("api listening")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	}

	stopJanitor()
	janitor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}

// jobServiceOptions wires the runner dispatcher when RUNNER_BASE_URL is set.
func jobServiceOptions(cfg *config.Config, logger logrus.FieldLogger) ([]service.JobServiceOption, error) {
	opts := []service.JobServiceOption{service.WithLogger(logger)}
	if cfg.RunnerBaseURL == "" {
		entry := logger.WithField("stale_pending_after", cfg.StalePending.String())
		if cfg.StalePending > 0 {
			entry.Warn("RUNNER_BASE_URL not set, jobs are never dispatched and the janitor fails them once STALE_PENDING_AFTER elapses")
		} else {
			entry.Warn("RUNNER_BASE_URL not set, jobs are never dispatched and stay pending; set STALE_PENDING_AFTER to fail them")
		}
		return opts, nil
	}

	runnerClient, err := runner.NewClient(nil, cfg.RunnerBaseURL)
	if err != nil {
		return nil, err
	}
	return append(opts, service.WithDispatcher(runnerClient)), nil
}
