package exporter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tripdesk/backoffice/internal/domain"
	"github.com/tripdesk/backoffice/internal/service/importer"
	"github.com/tripdesk/backoffice/pkg/ctxutil"
)

type fakeVendors struct {
	rows []domain.VendorListing
	err  error
}

func (f fakeVendors) List(context.Context) ([]domain.VendorListing, error) { return f.rows, f.err }

type fakeTags struct {
	rows []domain.Tag
	err  error
}

func (f fakeTags) List(context.Context) ([]domain.Tag, error) { return f.rows, f.err }

type fakeLocationTags struct {
	rows []domain.LocationTag
}

func (f fakeLocationTags) List(context.Context) ([]domain.LocationTag, error) { return f.rows, nil }

type recordingAudit struct {
	records []domain.AuditRecord
}

func (a *recordingAudit) Log(_ context.Context, rec domain.AuditRecord) error {
	a.records = append(a.records, rec)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T, audit auditLogger) *Service {
	t.Helper()

	vendors := fakeVendors{rows: []domain.VendorListing{{
		Vendor: domain.Vendor{
			Name:           "Casa Azul",
			ContactPerson:  "Ana Ruiz",
			Email:          "ana@casaazul.example",
			Phone:          "+52 55 1234",
			Address:        "Calle 5, Oaxaca",
			ServiceArea:    "Oaxaca",
			PriceRange:     3,
			CommissionRate: decimal.RequireFromString("0.12"),
		},
		ServiceTypes: []string{"Hotel", "Transport"},
		Tags:         []string{"Boutique"},
	}}}
	tags := fakeTags{rows: []domain.Tag{
		{Name: "Adventure", Description: strPtr("Outdoor, active trips")},
		{Name: "Luxury"},
	}}
	locationTags := fakeLocationTags{rows: []domain.LocationTag{
		{Name: "Patagonia", Country: strPtr("Argentina")},
	}}

	svc, err := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), vendors, tags, locationTags, audit)
	require.NoError(t, err)
	return svc
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, "xlsx": FormatXLSX, "excel": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_ExportCSV_RoundTrips(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), importer.EntityTags, FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	table, err := importer.ReadCSV(&buf, []string{importer.ColName})
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "Adventure", table.Records[0][importer.ColName])
	assert.Equal(t, "Outdoor, active trips", table.Records[0][importer.ColDescription])
	assert.Equal(t, "", table.Records[1][importer.ColDescription])
}

func TestService_ExportVendorsCSV_Revalidates(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), importer.EntityVendors, FormatCSV, &buf)
	require.NoError(t, err)

	schema, _ := importer.SchemaFor(importer.EntityVendors)
	table, err := importer.ReadCSV(&buf, schema.Required)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	rec := table.Records[0]
	assert.Equal(t, "3", rec[importer.ColPriceRange])
	assert.Equal(t, "0.12", rec[importer.ColCommissionRate])
	assert.Equal(t, "Hotel, Transport", rec[importer.ColServiceTypes])

	hotel, transport, boutique := uuid.New(), uuid.New(), uuid.New()
	lk := importer.NewLookups(
		[]domain.ServiceType{{ID: hotel, Name: "Hotel"}, {ID: transport, Name: "Transport"}},
		[]domain.Tag{{ID: boutique, Name: "Boutique"}},
	)
	v, msgs := importer.ValidateVendor(rec, lk)
	assert.Empty(t, msgs)
	assert.Equal(t, []uuid.UUID{hotel, transport}, v.ServiceTypeIDs)
	assert.Equal(t, []uuid.UUID{boutique}, v.TagIDs)
}

func TestService_ExportXLSX(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), importer.EntityLocationTags, FormatXLSX, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Location Tags")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "country", "region"}, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 2)
	assert.Equal(t, []string{"Patagonia", "Argentina"}, rows[1][:2])
}

func TestService_Export_Audits(t *testing.T) {
	t.Parallel()

	audit := &recordingAudit{}
	svc := newTestService(t, audit)
	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	_, err := svc.Export(ctx, importer.EntityTags, FormatCSV, io.Discard)
	require.NoError(t, err)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, domain.AuditActionExport, rec.Action)
	assert.Equal(t, "tags", rec.EntityType)
	require.NotNil(t, rec.UserID)
	assert.Equal(t, userID, *rec.UserID)
	assert.Equal(t, 2, rec.Changes["rows"])
}

func TestService_Export_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	svc, err := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)),
		fakeVendors{}, fakeTags{err: boom}, fakeLocationTags{}, nil)
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), importer.EntityTags, FormatCSV, io.Discard)
	assert.ErrorIs(t, err, boom)
}

func TestService_Template(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.Template(importer.EntityVendors, FormatCSV, &buf))
	assert.Equal(t,
		"name,contactPerson,email,phone,address,serviceArea,priceRange,commissionRate,serviceTypes,tags\n",
		buf.String())

	err := svc.Template(importer.Entity("trips"), FormatCSV, io.Discard)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewService_NilDependency(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil, fakeVendors{}, fakeTags{}, fakeLocationTags{}, nil)
	assert.Error(t, err)
}
