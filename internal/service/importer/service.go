// Package importer implements the CSV bulk import of vendors, tags and
// location tags: row validation, batching, bulk insert with per-row
// fallback on conflicts, and vendor relation linking.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/domain"
)

const (
	defaultVendorChunkSize = 20
	defaultTagChunkSize    = 50
)

type vendorRepo interface {
	store[domain.Vendor]
	relationStore
}

type tagRepo interface {
	store[domain.Tag]
	List(ctx context.Context) ([]domain.Tag, error)
}

type serviceTypeRepo interface {
	List(ctx context.Context) ([]domain.ServiceType, error)
}

// Service runs imports. Each call is independent; the service holds no
// per-import state and is safe for concurrent use.
type Service struct {
	log          *slog.Logger
	vendors      vendorRepo
	tags         tagRepo
	locationTags store[domain.LocationTag]
	serviceTypes serviceTypeRepo
	linker       *Linker
	notifier     Notifier
	cfg          config.ImportConfig
}

// NewService creates an import service. A nil notifier falls back to
// logging the summary.
func NewService(
	log *slog.Logger,
	vendors vendorRepo,
	tags tagRepo,
	locationTags store[domain.LocationTag],
	serviceTypes serviceTypeRepo,
	notifier Notifier,
	cfg config.ImportConfig,
) (*Service, error) {
	switch {
	case log == nil:
		return nil, errors.New("importer: nil logger")
	case vendors == nil:
		return nil, errors.New("importer: nil vendor repository")
	case tags == nil:
		return nil, errors.New("importer: nil tag repository")
	case locationTags == nil:
		return nil, errors.New("importer: nil location tag repository")
	case serviceTypes == nil:
		return nil, errors.New("importer: nil service type repository")
	}

	log = log.With("service", "importer")
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}

	return &Service{
		log:          log,
		vendors:      vendors,
		tags:         tags,
		locationTags: locationTags,
		serviceTypes: serviceTypes,
		linker:       NewLinker(log, vendors),
		notifier:     notifier,
		cfg:          cfg,
	}, nil
}

// ImportCSV reads a CSV file for entity and imports its rows. Unreadable
// files and missing required columns come back as a single setup error.
func (s *Service) ImportCSV(ctx context.Context, entity Entity, r io.Reader) *Result {
	schema, ok := SchemaFor(entity)
	if !ok {
		return s.finish(ctx, setupFailure(entity, fmt.Sprintf("Unknown import type %q", entity)))
	}

	table, err := ReadCSV(r, schema.Required)
	if err != nil {
		return s.finish(ctx, setupFailure(entity, err.Error()))
	}

	switch entity {
	case EntityVendors:
		return s.ImportVendors(ctx, table.Records)
	case EntityTags:
		return s.ImportTags(ctx, table.Records)
	default:
		return s.ImportLocationTags(ctx, table.Records)
	}
}

// ImportVendors imports vendor rows and links their service types,
// commission rates and tags.
func (s *Service) ImportVendors(ctx context.Context, records []Record) *Result {
	lk, err := s.loadLookups(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "load lookups failed", slog.String("error", err.Error()))
		res := newResult(EntityVendors, len(records))
		for i, rec := range records {
			res.add(ImportError{
				Row:     i + 2,
				Kind:    KindSetup,
				Data:    rec,
				Message: fmt.Sprintf("Failed to load service types and tags: %v", err),
			})
		}
		return s.finish(ctx, res)
	}

	p := plan[domain.Vendor]{
		entity:    EntityVendors,
		chunkSize: chunkSize(s.cfg.VendorChunkSize, defaultVendorChunkSize),
		store:     s.vendors,
		validate:  func(rec Record) (domain.Vendor, []string) { return ValidateVendor(rec, lk) },
		inserted: func(ctx context.Context, v domain.Vendor) {
			if failed := s.linker.Link(ctx, v); failed > 0 {
				s.log.DebugContext(ctx, "vendor imported with missing relations",
					slog.String("vendor", v.Name), slog.Int("failed_steps", failed))
			}
		},
	}
	return s.finish(ctx, run(ctx, s.log, p, records))
}

// ImportTags imports tag rows. Repeated names inside the file are skipped.
func (s *Service) ImportTags(ctx context.Context, records []Record) *Result {
	p := plan[domain.Tag]{
		entity:    EntityTags,
		chunkSize: chunkSize(s.cfg.TagChunkSize, defaultTagChunkSize),
		store:     s.tags,
		validate:  ValidateTag,
		key:       func(t domain.Tag) string { return domain.NameKey(t.Name) },
	}
	return s.finish(ctx, run(ctx, s.log, p, records))
}

// ImportLocationTags imports location tag rows. Repeated names inside the
// file are skipped.
func (s *Service) ImportLocationTags(ctx context.Context, records []Record) *Result {
	p := plan[domain.LocationTag]{
		entity:    EntityLocationTags,
		chunkSize: chunkSize(s.cfg.LocationTagChunkSize, defaultTagChunkSize),
		store:     s.locationTags,
		validate:  ValidateLocationTag,
		key:       func(t domain.LocationTag) string { return domain.NameKey(t.Name) },
	}
	return s.finish(ctx, run(ctx, s.log, p, records))
}

// loadLookups fetches the service type and tag catalogues concurrently.
func (s *Service) loadLookups(ctx context.Context) (Lookups, error) {
	var (
		serviceTypes []domain.ServiceType
		tags         []domain.Tag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if serviceTypes, err = s.serviceTypes.List(gctx); err != nil {
			return fmt.Errorf("list service types: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tags, err = s.tags.List(gctx); err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Lookups{}, err
	}

	return NewLookups(serviceTypes, tags), nil
}

// finish emits the summary. The notification outlives a cancelled request
// so that aborted imports are still recorded.
func (s *Service) finish(ctx context.Context, res *Result) *Result {
	s.notifier.ImportCompleted(context.WithoutCancel(ctx), res)
	return res
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

type plan[T any] struct {
	entity    Entity
	chunkSize int
	store     store[T]
	validate  func(Record) (T, []string)
	// key returns the in-file identity of an item. Items with a key already
	// seen earlier in the file are skipped. Nil disables the check.
	key func(T) string
	// inserted runs for every item the store accepted, in file order.
	inserted func(ctx context.Context, item T)
}

func run[T any](ctx context.Context, log *slog.Logger, p plan[T], records []Record) *Result {
	res := newResult(p.entity, len(records))
	log = log.With(slog.String("entity", p.entity.String()))

	valid := make([]row[T], 0, len(records))
	seen := make(map[string]struct{})
	for i, rec := range records {
		item, msgs := p.validate(rec)
		if len(msgs) > 0 {
			res.add(ImportError{
				Row:     i + 2,
				Kind:    KindValidation,
				Data:    rec,
				Message: strings.Join(msgs, "; "),
			})
			continue
		}

		if p.key != nil {
			k := p.key(item)
			if _, dup := seen[k]; dup {
				res.Skipped++
				log.DebugContext(ctx, "duplicate row skipped", slog.Int("row", i+2))
				continue
			}
			seen[k] = struct{}{}
		}

		valid = append(valid, row[T]{index: i, record: rec, item: item})
	}

	if len(valid) == 0 {
		return res
	}

	exec := executor[T]{store: p.store, log: log}
	chunks := Chunk(valid, p.chunkSize)
	for n, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			log.WarnContext(ctx, "import cancelled",
				slog.Int("batch", n+1),
				slog.Int("batches", len(chunks)),
			)
			for _, rest := range chunks[n:] {
				for _, r := range rest {
					res.add(ImportError{
						Row:     r.line(),
						Kind:    KindSetup,
						Data:    r.record,
						Message: fmt.Sprintf("Import aborted: %v", err),
					})
				}
			}
			break
		}

		out := exec.run(ctx, n+1, chunk)
		res.SuccessCount += out.success
		res.add(out.errors...)

		if p.inserted != nil {
			for _, r := range out.inserted {
				p.inserted(ctx, r.item)
			}
		}
	}

	return res
}

func chunkSize(configured, fallback int) int {
	if configured < 1 {
		return fallback
	}
	return configured
}

func setupFailure(entity Entity, msg string) *Result {
	res := newResult(entity, 0)
	res.add(ImportError{Kind: KindSetup, Message: msg})
	return res
}
