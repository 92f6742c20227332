package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdesk/backoffice/internal/domain"
)

// UniqueName returns prefix with a short random suffix, so parallel tests
// sharing one database never collide on the unique name indexes.
func UniqueName(prefix string) string {
	return prefix + " " + uuid.New().String()[:8]
}

// SeedServiceType inserts a service type with a unique name.
func SeedServiceType(t *testing.T, pool *pgxpool.Pool, prefix string) domain.ServiceType {
	t.Helper()

	st := domain.ServiceType{ID: uuid.New(), Name: UniqueName(prefix)}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO service_types (id, name) VALUES ($1, $2)`, st.ID, st.Name)
	if err != nil {
		t.Fatalf("testhelper: SeedServiceType: %v", err)
	}
	return st
}

// SeedTag inserts a tag with a unique name.
func SeedTag(t *testing.T, pool *pgxpool.Pool, prefix string) domain.Tag {
	t.Helper()

	tag := domain.Tag{ID: uuid.New(), Name: UniqueName(prefix)}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO tags (id, name) VALUES ($1, $2)`, tag.ID, tag.Name)
	if err != nil {
		t.Fatalf("testhelper: SeedTag: %v", err)
	}
	return tag
}
