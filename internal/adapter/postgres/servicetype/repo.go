// Package servicetype reads the service type catalogue.
package servicetype

import (
	"context"
	"fmt"

	postgres "github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/domain"
)

type Repo struct {
	q postgres.Querier
}

func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// List returns every service type ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.ServiceType, error) {
	query, args, err := postgres.QB.Select("id", "name").From("service_types").OrderBy("lower(name)").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list service types: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}
	defer rows.Close()

	var out []domain.ServiceType
	for rows.Next() {
		var st domain.ServiceType
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("scan service type: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}

	return out, nil
}
