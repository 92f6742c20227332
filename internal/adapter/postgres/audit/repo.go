// Package audit implements the append-only audit log using PostgreSQL.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	postgres "github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	q postgres.Querier
}

// New creates a new audit repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// Log appends one audit record. A zero ID is replaced with a fresh one.
func (r *Repo) Log(ctx context.Context, record domain.AuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Changes == nil {
		record.Changes = map[string]any{}
	}

	changesJSON, err := json.Marshal(record.Changes)
	if err != nil {
		return fmt.Errorf("audit_record marshal changes: %w", err)
	}

	b := postgres.QB.Insert("audit_logs").
		Columns("id", "user_id", "entity_type", "action", "changes").
		Values(record.ID, record.UserID, record.EntityType, string(record.Action), changesJSON)

	if _, err := postgres.ExecBuilder(ctx, r.q, b); err != nil {
		return postgres.MapError(err, "audit_record", record.ID.String())
	}
	return nil
}

// ListByEntity returns the newest records for an entity type, newest first.
func (r *Repo) ListByEntity(ctx context.Context, entityType string, limit int) ([]domain.AuditRecord, error) {
	query, args, err := postgres.QB.
		Select("id", "user_id", "entity_type", "action", "changes", "created_at").
		From("audit_logs").
		Where("entity_type = ?", entityType).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit_records: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit_records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var (
			rec     domain.AuditRecord
			action  string
			changes []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.EntityType, &action, &changes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit_record: %w", err)
		}
		rec.Action = domain.AuditAction(action)
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &rec.Changes); err != nil {
				return nil, fmt.Errorf("audit_record %s unmarshal changes: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit_records: %w", err)
	}

	return records, nil
}

// DeleteOlderThan removes records created before threshold and returns how
// many were deleted.
func (r *Repo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	b := postgres.QB.Delete("audit_logs").Where("created_at < ?", threshold)

	n, err := postgres.ExecBuilder(ctx, r.q, b)
	if err != nil {
		return 0, postgres.MapError(err, "audit_record", "")
	}
	return n, nil
}
