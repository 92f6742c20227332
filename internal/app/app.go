package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tripdesk/backoffice/internal/adapter/metrics"
	"github.com/tripdesk/backoffice/internal/auth"
	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/transport/middleware"
	"github.com/tripdesk/backoffice/internal/transport/rest"
)

const rateLimitCleanup = 5 * time.Minute

// Run is the application entry point. It loads configuration, wires the
// services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	svcs, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	limiter := middleware.NewRateLimiter(rateLimitCleanup)
	defer limiter.Stop()

	handler := newHandler(cfg, logger, svcs, limiter)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newHandler(cfg *config.Config, logger *slog.Logger, svcs *Services, limiter *middleware.RateLimiter) http.Handler {
	verifier := auth.NewVerifier(cfg.Auth)

	return rest.NewRouter(rest.RouterDeps{
		Health: rest.NewHealthHandler(BuildVersion(), map[string]rest.Pinger{
			"database": svcs.Pool,
		}),
		Import:  rest.NewImportHandler(svcs.Importer, cfg.Import.MaxUploadBytes, logger),
		Export:  rest.NewExportHandler(svcs.Exporter, logger),
		Admin:   rest.NewAdminHandler(svcs.Audit, logger),
		Metrics: metrics.Handler(svcs.Registry),
		Global: middleware.Chain(
			middleware.RequestID(),
			middleware.Logger(logger),
			middleware.Recovery(logger),
			middleware.CORS(cfg.CORS),
			middleware.Auth(verifier),
		),
		UploadLimit: limiter.Limit(cfg.Import.UploadsPerMinute, middleware.ByUserOrIP),
	})
}
