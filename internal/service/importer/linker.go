package importer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/internal/domain"
)

type relationStore interface {
	LinkServiceTypes(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID) error
	SetCommissionRates(ctx context.Context, vendorID uuid.UUID, serviceTypeIDs []uuid.UUID, rate decimal.Decimal) error
	LinkTags(ctx context.Context, vendorID uuid.UUID, tagIDs []uuid.UUID) error
}

// Linker writes the relation rows of freshly inserted vendors.
//
// Linking is best effort: each step runs independently and a failure is
// logged, never reported in the import result. The vendor row stays in
// place even if none of its relations could be written.
type Linker struct {
	store relationStore
	log   *slog.Logger
}

// NewLinker creates a Linker.
func NewLinker(log *slog.Logger, store relationStore) *Linker {
	return &Linker{store: store, log: log.With("component", "linker")}
}

// Link writes service types, per-service-type commission rates and tags for v.
// It returns the number of failed steps.
func (l *Linker) Link(ctx context.Context, v domain.Vendor) int {
	failed := 0

	if len(v.ServiceTypeIDs) > 0 {
		if err := l.store.LinkServiceTypes(ctx, v.ID, v.ServiceTypeIDs); err != nil {
			l.warn(ctx, v, "service_types", err)
			failed++
		}
		if err := l.store.SetCommissionRates(ctx, v.ID, v.ServiceTypeIDs, v.CommissionRate); err != nil {
			l.warn(ctx, v, "commission_rates", err)
			failed++
		}
	}

	if len(v.TagIDs) > 0 {
		if err := l.store.LinkTags(ctx, v.ID, v.TagIDs); err != nil {
			l.warn(ctx, v, "tags", err)
			failed++
		}
	}

	return failed
}

func (l *Linker) warn(ctx context.Context, v domain.Vendor, step string, err error) {
	l.log.WarnContext(ctx, "vendor relation link failed",
		slog.String("vendor_id", v.ID.String()),
		slog.String("vendor", v.Name),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
}
