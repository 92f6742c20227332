// Package tag implements the tag catalogue repository using PostgreSQL.
package tag

import (
	"context"
	"fmt"

	postgres "github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/domain"
)

var columns = []string{"id", "name", "description"}

// Repo provides tag persistence backed by PostgreSQL.
type Repo struct {
	q postgres.Querier
}

// New creates a new tag repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// BulkInsert inserts all tags in one multi-row statement and returns the
// number of rows written. A name collision fails the whole statement with
// domain.ErrAlreadyExists.
func (r *Repo) BulkInsert(ctx context.Context, tags []domain.Tag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	b := postgres.QB.Insert("tags").Columns(columns...)
	for _, t := range tags {
		b = b.Values(t.ID, t.Name, t.Description)
	}

	n, err := postgres.ExecBuilder(ctx, r.q, b)
	if err != nil {
		return 0, postgres.MapError(err, "tags", "")
	}
	return int(n), nil
}

// Insert inserts a single tag.
func (r *Repo) Insert(ctx context.Context, t domain.Tag) error {
	b := postgres.QB.Insert("tags").Columns(columns...).Values(t.ID, t.Name, t.Description)
	if _, err := postgres.ExecBuilder(ctx, r.q, b); err != nil {
		return postgres.MapError(err, "tag", t.Name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns every tag ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.Tag, error) {
	query, args, err := postgres.QB.
		Select("id", "name", "description", "created_at").
		From("tags").
		OrderBy("lower(name)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tags: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}
