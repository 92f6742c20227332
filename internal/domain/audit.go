package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction describes what happened to an entity.
type AuditAction string

const (
	AuditActionImport AuditAction = "IMPORT"
	AuditActionExport AuditAction = "EXPORT"
)

// AuditRecord is one row of the audit log.
type AuditRecord struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	EntityType string
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}
