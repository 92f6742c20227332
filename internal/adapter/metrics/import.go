// Package metrics exposes Prometheus instrumentation for imports.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripdesk/backoffice/internal/service/importer"
)

const namespace = "backoffice"

// Row outcomes.
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
)

// ImportRecorder counts finished imports. It implements importer.Notifier.
type ImportRecorder struct {
	runs   *prometheus.CounterVec
	rows   *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewImportRecorder registers the import collectors on reg.
func NewImportRecorder(reg prometheus.Registerer) *ImportRecorder {
	f := promauto.With(reg)
	return &ImportRecorder{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Total number of finished CSV imports.",
		}, []string{"entity", "result"}),
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows processed by CSV imports, by outcome.",
		}, []string{"entity", "outcome"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "errors_total",
			Help:      "Import errors, by kind.",
		}, []string{"entity", "kind"}),
	}
}

// ImportCompleted records one finished import.
func (r *ImportRecorder) ImportCompleted(_ context.Context, res *importer.Result) {
	entity := res.Entity.String()

	result := "ok"
	switch {
	case res.SuccessCount == 0 && res.HasErrors():
		result = "failed"
	case res.HasErrors():
		result = "partial"
	}
	r.runs.WithLabelValues(entity, result).Inc()

	r.rows.WithLabelValues(entity, OutcomeImported).Add(float64(res.SuccessCount))
	r.rows.WithLabelValues(entity, OutcomeSkipped).Add(float64(res.Skipped))

	for kind, n := range res.CountByKind() {
		r.errors.WithLabelValues(entity, string(kind)).Add(float64(n))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
