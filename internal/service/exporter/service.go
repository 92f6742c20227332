// Package exporter writes catalogue tables as CSV or XLSX files laid out
// exactly like the import templates, so an export can be edited and
// imported again.
package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tripdesk/backoffice/internal/domain"
	"github.com/tripdesk/backoffice/internal/service/importer"
	"github.com/tripdesk/backoffice/pkg/ctxutil"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" or an empty string (csv).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv or xlsx): %w", s, domain.ErrValidation)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds the download name for an entity export.
func (f Format) FileName(entity importer.Entity, suffix string) string {
	return entity.String() + suffix + "." + string(f)
}

type vendorLister interface {
	List(ctx context.Context) ([]domain.VendorListing, error)
}

type tagLister interface {
	List(ctx context.Context) ([]domain.Tag, error)
}

type locationTagLister interface {
	List(ctx context.Context) ([]domain.LocationTag, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

// Service exports catalogue tables.
type Service struct {
	log          *slog.Logger
	vendors      vendorLister
	tags         tagLister
	locationTags locationTagLister
	audit        auditLogger
}

// NewService creates an exporter. audit may be nil.
func NewService(
	logger *slog.Logger,
	vendors vendorLister,
	tags tagLister,
	locationTags locationTagLister,
	audit auditLogger,
) (*Service, error) {
	if logger == nil || vendors == nil || tags == nil || locationTags == nil {
		return nil, errors.New("exporter: nil dependency")
	}
	return &Service{
		log:          logger.With("service", "exporter"),
		vendors:      vendors,
		tags:         tags,
		locationTags: locationTags,
		audit:        audit,
	}, nil
}

// Export writes every row of entity to w and returns the number of data rows.
func (s *Service) Export(ctx context.Context, entity importer.Entity, format Format, w io.Writer) (int, error) {
	schema, ok := importer.SchemaFor(entity)
	if !ok {
		return 0, fmt.Errorf("export %q: %w", entity, domain.ErrValidation)
	}

	rows, err := s.rows(ctx, entity)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", entity, err)
	}

	if err := write(format, entity, schema.Columns, rows, w); err != nil {
		return 0, fmt.Errorf("export %s: %w", entity, err)
	}

	s.log.InfoContext(ctx, "export written",
		slog.String("entity", entity.String()),
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)),
	)
	s.logAudit(ctx, entity, format, len(rows))

	return len(rows), nil
}

// Template writes a header-only file for entity.
func (s *Service) Template(entity importer.Entity, format Format, w io.Writer) error {
	schema, ok := importer.SchemaFor(entity)
	if !ok {
		return fmt.Errorf("template %q: %w", entity, domain.ErrValidation)
	}
	return write(format, entity, schema.Columns, nil, w)
}

func (s *Service) rows(ctx context.Context, entity importer.Entity) ([][]string, error) {
	switch entity {
	case importer.EntityVendors:
		vendors, err := s.vendors.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, len(vendors))
		for i, v := range vendors {
			out[i] = vendorRow(v)
		}
		return out, nil

	case importer.EntityTags:
		tags, err := s.tags.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, len(tags))
		for i, t := range tags {
			out[i] = []string{t.Name, deref(t.Description)}
		}
		return out, nil

	case importer.EntityLocationTags:
		tags, err := s.locationTags.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, len(tags))
		for i, t := range tags {
			out[i] = []string{t.Name, deref(t.Country), deref(t.Region)}
		}
		return out, nil
	}
	return nil, domain.ErrValidation
}

// vendorRow follows the vendors schema column order.
func vendorRow(v domain.VendorListing) []string {
	return []string{
		v.Name,
		v.ContactPerson,
		v.Email,
		v.Phone,
		v.Address,
		v.ServiceArea,
		strconv.Itoa(v.PriceRange),
		v.CommissionRate.String(),
		strings.Join(v.ServiceTypes, ", "),
		strings.Join(v.Tags, ", "),
	}
}

func (s *Service) logAudit(ctx context.Context, entity importer.Entity, format Format, rows int) {
	if s.audit == nil {
		return
	}
	rec := domain.AuditRecord{
		EntityType: entity.String(),
		Action:     domain.AuditActionExport,
		Changes:    map[string]any{"format": string(format), "rows": rows},
	}
	if userID, ok := ctxutil.UserIDFromCtx(ctx); ok {
		rec.UserID = &userID
	}
	if err := s.audit.Log(ctx, rec); err != nil {
		s.log.WarnContext(ctx, "export audit log failed",
			slog.String("entity", entity.String()),
			slog.String("error", err.Error()),
		)
	}
}

func write(format Format, entity importer.Entity, header []string, rows [][]string, w io.Writer) error {
	switch format {
	case FormatCSV:
		return writeCSV(header, rows, w)
	case FormatXLSX:
		return writeXLSX(sheetName(entity), header, rows, w)
	}
	return fmt.Errorf("unknown format %q: %w", format, domain.ErrValidation)
}

func writeCSV(header []string, rows [][]string, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func writeXLSX(sheet string, header []string, rows [][]string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, cell, name); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, colName, colName, 20); err != nil {
			return fmt.Errorf("set width %s: %w", colName, err)
		}
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	// Cells are written as strings so values like "0.10" keep their text form.
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func sheetName(entity importer.Entity) string {
	switch entity {
	case importer.EntityVendors:
		return "Vendors"
	case importer.EntityTags:
		return "Tags"
	case importer.EntityLocationTags:
		return "Location Tags"
	}
	return "Sheet1"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
