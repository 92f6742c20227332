package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tripdesk/backoffice/internal/adapter/metrics"
	"github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/audit"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/locationtag"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/servicetype"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/tag"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/vendor"
	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/service/exporter"
	"github.com/tripdesk/backoffice/internal/service/importer"
)

// Services is the wired service graph shared by the HTTP server and the CLI.
type Services struct {
	Pool     *pgxpool.Pool
	Registry *prometheus.Registry

	Vendors *vendor.Repo
	Audit   *audit.Repo

	Importer *importer.Service
	Exporter *exporter.Service
}

// NewServices connects to the database and builds every service. Close
// releases the pool.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tagRepo := tag.New(pool)
	locationTagRepo := locationtag.New(pool)
	serviceTypeRepo := servicetype.New(pool)
	vendorRepo := vendor.New(pool)
	auditRepo := audit.New(pool)

	notifier := importer.Notifiers{
		importer.NewLogNotifier(logger.With("service", "importer")),
		metrics.NewImportRecorder(reg),
		importer.NewAuditNotifier(logger, auditRepo),
	}

	imp, err := importer.NewService(logger, vendorRepo, tagRepo, locationTagRepo, serviceTypeRepo, notifier, cfg.Import)
	if err != nil {
		pool.Close()
		return nil, err
	}

	exp, err := exporter.NewService(logger, vendorRepo, tagRepo, locationTagRepo, auditRepo)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Services{
		Pool:     pool,
		Registry: reg,
		Vendors:  vendorRepo,
		Audit:    auditRepo,
		Importer: imp,
		Exporter: exp,
	}, nil
}

// Close releases the database pool.
func (s *Services) Close() {
	s.Pool.Close()
}
