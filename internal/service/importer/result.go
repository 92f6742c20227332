package importer

import (
	"fmt"
	"strings"
)

// Entity names an importable catalogue.
type Entity string

const (
	EntityVendors      Entity = "vendors"
	EntityTags         Entity = "tags"
	EntityLocationTags Entity = "location-tags"
)

// Entities lists every importable entity in display order.
var Entities = []Entity{EntityVendors, EntityTags, EntityLocationTags}

func (e Entity) String() string { return string(e) }

// ParseEntity accepts the URL/CLI spelling of an entity.
func ParseEntity(s string) (Entity, error) {
	switch Entity(strings.ToLower(strings.TrimSpace(s))) {
	case EntityVendors:
		return EntityVendors, nil
	case EntityTags:
		return EntityTags, nil
	case EntityLocationTags, "location_tags", "locationtags":
		return EntityLocationTags, nil
	}
	return "", fmt.Errorf("unknown entity %q (want vendors, tags or location-tags)", s)
}

// ErrorKind classifies an ImportError.
type ErrorKind string

const (
	// KindValidation: the row failed field validation and was never sent to storage.
	KindValidation ErrorKind = "validation"
	// KindConflict: the row collided with an existing unique name.
	KindConflict ErrorKind = "conflict"
	// KindStorage: the store rejected the row or the whole batch for another reason.
	KindStorage ErrorKind = "storage"
	// KindSetup: the import could not run (bad header, lookup load, cancellation).
	KindSetup ErrorKind = "setup"
)

// ImportError is one failure reported back to the caller. Row is the
// 1-based file line (header is line 1) for row-level errors; Batch is the
// 1-based chunk number for batch-level errors.
type ImportError struct {
	Row     int               `json:"row,omitempty"`
	Batch   int               `json:"batch,omitempty"`
	Rows    int               `json:"rows,omitempty"`
	Kind    ErrorKind         `json:"kind"`
	Data    map[string]string `json:"data,omitempty"`
	Message string            `json:"message"`
}

// Result is the outcome of one import run.
type Result struct {
	Entity       Entity        `json:"entity"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"successCount"`
	Skipped      int           `json:"skipped"`
	Errors       []ImportError `json:"errors"`
}

func newResult(entity Entity, total int) *Result {
	return &Result{Entity: entity, Total: total, Errors: []ImportError{}}
}

func (r *Result) add(errs ...ImportError) {
	r.Errors = append(r.Errors, errs...)
}

// HasErrors reports whether any error was recorded.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// CountByKind tallies errors per kind.
func (r *Result) CountByKind() map[ErrorKind]int {
	out := make(map[ErrorKind]int, 4)
	for _, e := range r.Errors {
		out[e.Kind]++
	}
	return out
}

// Summary renders a one-line, human-readable outcome.
func (r *Result) Summary() string {
	noun := strings.ReplaceAll(string(r.Entity), "-", " ")
	if !r.HasErrors() {
		s := fmt.Sprintf("Successfully imported %d %s", r.SuccessCount, noun)
		if r.Skipped > 0 {
			s += fmt.Sprintf(" (%d duplicate rows skipped)", r.Skipped)
		}
		return s
	}
	s := fmt.Sprintf("Imported %d of %d %s with %d errors", r.SuccessCount, r.Total, noun, len(r.Errors))
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d duplicate rows skipped", r.Skipped)
	}
	return s
}
