package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tripdesk/backoffice/internal/service/importer"
)

// multipartMemory is the part of an upload kept in memory; the rest spills
// to a temp file.
const multipartMemory = 1 << 20

type importService interface {
	ImportCSV(ctx context.Context, entity importer.Entity, r io.Reader) *importer.Result
}

// ImportHandler accepts CSV uploads.
type ImportHandler struct {
	svc      importService
	maxBytes int64
	log      *slog.Logger
}

// NewImportHandler creates an ImportHandler. Uploads larger than maxBytes
// are rejected with 413.
func NewImportHandler(svc importService, maxBytes int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		svc:      svc,
		maxBytes: maxBytes,
		log:      logger.With("handler", "import"),
	}
}

// Import runs a CSV import. The response is the import result; row and
// batch failures are reported inside it with status 200.
// POST /api/import/{entity}   multipart/form-data, field "file"
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	entity, err := importer.ParseEntity(mux.Vars(r)["entity"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a \"file\" field")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" field")
		return
	}
	defer file.Close()

	h.log.InfoContext(r.Context(), "import upload received",
		slog.String("entity", entity.String()),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	res := h.svc.ImportCSV(r.Context(), entity, file)

	writeJSON(w, http.StatusOK, importResponse{Result: res, Message: res.Summary()})
}

type importResponse struct {
	*importer.Result
	Message string `json:"message"`
}
