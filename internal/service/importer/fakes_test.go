package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory store with a unique index on key(item).
// BulkInsert is all-or-nothing, like a single INSERT statement.
type memStore[T any] struct {
	key func(T) string

	mu   sync.Mutex
	rows map[string]T

	// bulkErr, when set, fails every BulkInsert with it.
	bulkErr error
	// bulkErrs fails the n-th (1-based) BulkInsert call with the mapped error.
	bulkErrs map[int]error
	// insertErr, when set and non-nil for an item, fails Insert with it.
	insertErr func(T) error

	bulkCalls   [][]T
	insertCalls []T
}

func newMemStore[T any](key func(T) string, existing ...T) *memStore[T] {
	s := &memStore[T]{key: key, rows: make(map[string]T)}
	for _, it := range existing {
		s.rows[key(it)] = it
	}
	return s
}

func (s *memStore[T]) BulkInsert(_ context.Context, items []T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkCalls = append(s.bulkCalls, append([]T(nil), items...))
	if s.bulkErr != nil {
		return 0, s.bulkErr
	}
	if err := s.bulkErrs[len(s.bulkCalls)]; err != nil {
		return 0, err
	}

	batch := make(map[string]bool, len(items))
	for _, it := range items {
		k := s.key(it)
		if _, ok := s.rows[k]; ok || batch[k] {
			return 0, fmt.Errorf("bulk: %w", domain.ErrAlreadyExists)
		}
		batch[k] = true
	}
	for _, it := range items {
		s.rows[s.key(it)] = it
	}
	return len(items), nil
}

func (s *memStore[T]) Insert(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertCalls = append(s.insertCalls, item)
	if s.insertErr != nil {
		if err := s.insertErr(item); err != nil {
			return err
		}
	}
	k := s.key(item)
	if _, ok := s.rows[k]; ok {
		return fmt.Errorf("%q: %w", k, domain.ErrAlreadyExists)
	}
	s.rows[k] = item
	return nil
}

func (s *memStore[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func tagKey(t domain.Tag) string                 { return domain.NameKey(t.Name) }
func locationTagKey(t domain.LocationTag) string { return domain.NameKey(t.Name) }
func vendorKey(v domain.Vendor) string           { return domain.NameKey(v.Name) }

// fakeTagRepo adds List to the tag memStore.
type fakeTagRepo struct {
	*memStore[domain.Tag]
	listErr error
}

func (f *fakeTagRepo) List(context.Context) ([]domain.Tag, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Tag, 0, len(f.rows))
	for _, t := range f.rows {
		out = append(out, t)
	}
	return out, nil
}

type fakeServiceTypeRepo struct {
	types []domain.ServiceType
	err   error
}

func (f *fakeServiceTypeRepo) List(context.Context) ([]domain.ServiceType, error) {
	return f.types, f.err
}

// fakeVendorRepo combines the vendor memStore with a relation mock.
type fakeVendorRepo struct {
	*memStore[domain.Vendor]
	*relationStoreMock
}

func okRelations() *relationStoreMock {
	return &relationStoreMock{
		LinkServiceTypesFunc: func(context.Context, uuid.UUID, []uuid.UUID) error { return nil },
		SetCommissionRatesFunc: func(context.Context, uuid.UUID, []uuid.UUID, decimal.Decimal) error {
			return nil
		},
		LinkTagsFunc: func(context.Context, uuid.UUID, []uuid.UUID) error { return nil },
	}
}

type auditLoggerMock struct {
	mu      sync.Mutex
	err     error
	records []domain.AuditRecord
}

func (m *auditLoggerMock) Log(_ context.Context, rec domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}
