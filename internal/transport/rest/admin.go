package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tripdesk/backoffice/internal/domain"
	"github.com/tripdesk/backoffice/internal/service/importer"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditReader interface {
	ListByEntity(ctx context.Context, entityType string, limit int) ([]domain.AuditRecord, error)
}

// AdminHandler serves admin-only REST endpoints.
type AdminHandler struct {
	audit auditReader
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(audit auditReader, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		audit: audit,
		log:   logger.With("handler", "admin"),
	}
}

type auditRecordResponse struct {
	ID         string         `json:"id"`
	UserID     *string        `json:"userId,omitempty"`
	EntityType string         `json:"entityType"`
	Action     string         `json:"action"`
	Changes    map[string]any `json:"changes,omitempty"`
	CreatedAt  string         `json:"createdAt"`
}

// AuditLog lists the most recent import/export audit records for an entity.
// GET /api/admin/audit?entity=vendors&limit=50
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	entity, err := importer.ParseEntity(r.URL.Query().Get("entity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	records, err := h.audit.ListByEntity(r.Context(), entity.String(), limit)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list audit log", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]auditRecordResponse, len(records))
	for i, rec := range records {
		out[i] = auditRecordResponse{
			ID:         rec.ID.String(),
			EntityType: rec.EntityType,
			Action:     string(rec.Action),
			Changes:    rec.Changes,
			CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if rec.UserID != nil {
			id := rec.UserID.String()
			out[i].UserID = &id
		}
	}

	writeJSON(w, http.StatusOK, out)
}
