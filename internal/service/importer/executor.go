package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tripdesk/backoffice/internal/domain"
)

// store is the write side of an entity repository.
type store[T any] interface {
	// BulkInsert writes all items in one statement. It fails as a whole;
	// a name collision is reported as domain.ErrAlreadyExists.
	BulkInsert(ctx context.Context, items []T) (int, error)
	Insert(ctx context.Context, item T) error
}

// row is a validated record together with its position in the file.
type row[T any] struct {
	index  int
	record Record
	item   T
}

// line is the 1-based file line of the row (the header is line 1).
func (r row[T]) line() int { return r.index + 2 }

type chunkOutcome[T any] struct {
	inserted []row[T]
	success  int
	errors   []ImportError
}

// executor inserts one chunk at a time.
type executor[T any] struct {
	store store[T]
	log   *slog.Logger
}

// run inserts chunk with one bulk statement. When the statement fails on a
// uniqueness conflict the rows are retried one by one so that only the
// colliding rows are rejected. Any other failure rejects the whole chunk
// with a single batch-level error.
func (e executor[T]) run(ctx context.Context, batch int, chunk []row[T]) chunkOutcome[T] {
	items := make([]T, len(chunk))
	for i, r := range chunk {
		items[i] = r.item
	}

	n, err := e.store.BulkInsert(ctx, items)
	if err == nil {
		return chunkOutcome[T]{inserted: chunk, success: n}
	}

	if !errors.Is(err, domain.ErrAlreadyExists) {
		e.log.ErrorContext(ctx, "batch insert failed",
			slog.Int("batch", batch),
			slog.Int("rows", len(chunk)),
			slog.String("error", err.Error()),
		)
		return chunkOutcome[T]{errors: []ImportError{{
			Batch:   batch,
			Rows:    len(chunk),
			Kind:    KindStorage,
			Message: fmt.Sprintf("Batch %d failed: %v", batch, err),
		}}}
	}

	e.log.DebugContext(ctx, "batch conflict, retrying rows individually",
		slog.Int("batch", batch),
		slog.Int("rows", len(chunk)),
	)
	return e.retryRows(ctx, chunk)
}

func (e executor[T]) retryRows(ctx context.Context, chunk []row[T]) chunkOutcome[T] {
	var out chunkOutcome[T]
	for _, r := range chunk {
		err := e.store.Insert(ctx, r.item)
		if err == nil {
			out.success++
			out.inserted = append(out.inserted, r)
			continue
		}

		kind := KindStorage
		if errors.Is(err, domain.ErrAlreadyExists) {
			kind = KindConflict
		}
		out.errors = append(out.errors, ImportError{
			Row:     r.line(),
			Kind:    kind,
			Data:    r.record,
			Message: err.Error(),
		})
	}
	return out
}
