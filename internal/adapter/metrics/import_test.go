package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/backoffice/internal/service/importer"
)

func TestImportRecorder_ImportCompleted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewImportRecorder(reg)

	rec.ImportCompleted(context.Background(), &importer.Result{
		Entity:       importer.EntityTags,
		Total:        3,
		SuccessCount: 1,
		Skipped:      1,
		Errors:       []importer.ImportError{{Row: 3, Kind: importer.KindConflict, Message: "exists"}},
	})
	rec.ImportCompleted(context.Background(), &importer.Result{
		Entity:       importer.EntityTags,
		Total:        2,
		SuccessCount: 2,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(rec.runs.WithLabelValues("tags", "partial")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.runs.WithLabelValues("tags", "ok")))
	assert.Equal(t, float64(3), testutil.ToFloat64(rec.rows.WithLabelValues("tags", OutcomeImported)))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.rows.WithLabelValues("tags", OutcomeSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.errors.WithLabelValues("tags", "conflict")))
}

func TestImportRecorder_FailedRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewImportRecorder(reg)

	rec.ImportCompleted(context.Background(), &importer.Result{
		Entity: importer.EntityVendors,
		Total:  2,
		Errors: []importer.ImportError{
			{Row: 2, Kind: importer.KindValidation, Message: "Name is required"},
			{Row: 3, Kind: importer.KindValidation, Message: "Email is required"},
		},
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(rec.runs.WithLabelValues("vendors", "failed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(rec.errors.WithLabelValues("vendors", "validation")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := NewImportRecorder(reg)
	rec.ImportCompleted(context.Background(), &importer.Result{Entity: importer.EntityLocationTags, Total: 1, SuccessCount: 1})

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `backoffice_import_runs_total{entity="location-tags",result="ok"} 1`))
}
