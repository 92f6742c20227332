package importer

import (
	"context"
	"log/slog"

	"github.com/tripdesk/backoffice/internal/domain"
	"github.com/tripdesk/backoffice/pkg/ctxutil"
)

// Notifier receives exactly one summary per finished import.
type Notifier interface {
	ImportCompleted(ctx context.Context, res *Result)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, res *Result)

func (f NotifierFunc) ImportCompleted(ctx context.Context, res *Result) { f(ctx, res) }

// Notifiers fans a summary out to every element in order.
type Notifiers []Notifier

func (ns Notifiers) ImportCompleted(ctx context.Context, res *Result) {
	for _, n := range ns {
		if n != nil {
			n.ImportCompleted(ctx, res)
		}
	}
}

// NewLogNotifier logs the summary line of every import.
func NewLogNotifier(log *slog.Logger) Notifier {
	return NotifierFunc(func(ctx context.Context, res *Result) {
		level := slog.LevelInfo
		if res.HasErrors() {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, res.Summary(),
			slog.String("entity", res.Entity.String()),
			slog.Int("total", res.Total),
			slog.Int("success", res.SuccessCount),
			slog.Int("skipped", res.Skipped),
			slog.Int("errors", len(res.Errors)),
		)
	})
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

// NewAuditNotifier writes one audit log row per import. Failures are logged.
func NewAuditNotifier(log *slog.Logger, audit auditLogger) Notifier {
	return NotifierFunc(func(ctx context.Context, res *Result) {
		rec := domain.AuditRecord{
			EntityType: res.Entity.String(),
			Action:     domain.AuditActionImport,
			Changes: map[string]any{
				"total":   res.Total,
				"success": res.SuccessCount,
				"skipped": res.Skipped,
				"errors":  len(res.Errors),
			},
		}
		if userID, ok := ctxutil.UserIDFromCtx(ctx); ok {
			rec.UserID = &userID
		}

		if err := audit.Log(ctx, rec); err != nil {
			log.WarnContext(ctx, "import audit log failed",
				slog.String("entity", res.Entity.String()),
				slog.String("error", err.Error()),
			)
		}
	})
}
