// Package locationtag implements the location tag repository using PostgreSQL.
package locationtag

import (
	"context"
	"fmt"

	postgres "github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/domain"
)

var columns = []string{"id", "name", "country", "region"}

// Repo provides location tag persistence backed by PostgreSQL.
type Repo struct {
	q postgres.Querier
}

// New creates a new location tag repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// BulkInsert inserts all location tags in one statement and returns the
// number of rows written.
func (r *Repo) BulkInsert(ctx context.Context, tags []domain.LocationTag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	b := postgres.QB.Insert("location_tags").Columns(columns...)
	for _, t := range tags {
		b = b.Values(t.ID, t.Name, t.Country, t.Region)
	}

	n, err := postgres.ExecBuilder(ctx, r.q, b)
	if err != nil {
		return 0, postgres.MapError(err, "location_tags", "")
	}
	return int(n), nil
}

// Insert inserts a single location tag.
func (r *Repo) Insert(ctx context.Context, t domain.LocationTag) error {
	b := postgres.QB.Insert("location_tags").Columns(columns...).Values(t.ID, t.Name, t.Country, t.Region)
	if _, err := postgres.ExecBuilder(ctx, r.q, b); err != nil {
		return postgres.MapError(err, "location tag", t.Name)
	}
	return nil
}

// List returns every location tag ordered by country, then name.
func (r *Repo) List(ctx context.Context) ([]domain.LocationTag, error) {
	query, args, err := postgres.QB.
		Select("id", "name", "country", "region", "created_at").
		From("location_tags").
		OrderBy("country NULLS LAST", "lower(name)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list location tags: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list location tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.LocationTag
	for rows.Next() {
		var t domain.LocationTag
		if err := rows.Scan(&t.ID, &t.Name, &t.Country, &t.Region, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list location tags: %w", err)
	}

	return tags, nil
}
