package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tripdesk/backoffice/internal/service/exporter"
	"github.com/tripdesk/backoffice/internal/service/importer"
)

type exportService interface {
	Export(ctx context.Context, entity importer.Entity, format exporter.Format, w io.Writer) (int, error)
	Template(entity importer.Entity, format exporter.Format, w io.Writer) error
}

// ExportHandler serves catalogue downloads and import templates.
type ExportHandler struct {
	svc exportService
	log *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(svc exportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		svc: svc,
		log: logger.With("handler", "export"),
	}
}

// Export downloads every row of an entity.
// GET /api/export/{entity}?format=csv|xlsx
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	entity, format, ok := h.parse(w, r)
	if !ok {
		return
	}

	// Buffered so a failed export still gets a JSON error instead of a
	// truncated file.
	var buf bytes.Buffer
	if _, err := h.svc.Export(r.Context(), entity, format, &buf); err != nil {
		h.log.ErrorContext(r.Context(), "export failed",
			slog.String("entity", entity.String()),
			slog.String("error", err.Error()),
		)
		status := statusFor(err)
		msg := "internal server error"
		if status < http.StatusInternalServerError {
			msg = err.Error()
		}
		writeError(w, status, msg)
		return
	}

	writeFile(w, format, format.FileName(entity, ""), buf.Bytes())
}

// Template downloads a header-only file for an entity.
// GET /api/import/templates/{entity}?format=csv|xlsx
func (h *ExportHandler) Template(w http.ResponseWriter, r *http.Request) {
	entity, format, ok := h.parse(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Template(entity, format, &buf); err != nil {
		h.log.ErrorContext(r.Context(), "template failed", slog.String("error", err.Error()))
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeFile(w, format, format.FileName(entity, "-template"), buf.Bytes())
}

func (h *ExportHandler) parse(w http.ResponseWriter, r *http.Request) (importer.Entity, exporter.Format, bool) {
	entity, err := importer.ParseEntity(mux.Vars(r)["entity"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", "", false
	}
	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return entity, format, true
}

func writeFile(w http.ResponseWriter, format exporter.Format, filename string, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}
