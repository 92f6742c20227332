package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/internal/domain"
)

// Validation messages shown to the uploader.
const (
	MsgPriceRange     = "Price range must be a number between 1 and 5"
	MsgCommissionRate = "Commission rate must be a number between 0 and 1 (e.g., 0.1 for 10%)"
)

// NameIndex maps a folded catalogue name (domain.NameKey) to its id.
type NameIndex map[string]uuid.UUID

func newNameIndex[T any](items []T, name func(T) string, id func(T) uuid.UUID) NameIndex {
	idx := make(NameIndex, len(items))
	for _, it := range items {
		idx[domain.NameKey(name(it))] = id(it)
	}
	return idx
}

// Lookup resolves name case-insensitively.
func (n NameIndex) Lookup(name string) (uuid.UUID, bool) {
	id, ok := n[domain.NameKey(name)]
	return id, ok
}

// Lookups are the name snapshots a vendor import resolves against.
// They are built once per run and never shared between runs.
type Lookups struct {
	ServiceTypes NameIndex
	Tags         NameIndex
}

// NewLookups indexes the given catalogues by name.
func NewLookups(serviceTypes []domain.ServiceType, tags []domain.Tag) Lookups {
	return Lookups{
		ServiceTypes: newNameIndex(serviceTypes,
			func(s domain.ServiceType) string { return s.Name },
			func(s domain.ServiceType) uuid.UUID { return s.ID }),
		Tags: newNameIndex(tags,
			func(t domain.Tag) string { return t.Name },
			func(t domain.Tag) uuid.UUID { return t.ID }),
	}
}

type requiredField struct {
	column string
	label  string
}

var vendorRequired = []requiredField{
	{ColName, "Name"},
	{ColContactPerson, "Contact person"},
	{ColEmail, "Email"},
	{ColPhone, "Phone"},
	{ColAddress, "Address"},
	{ColServiceArea, "Service area"},
}

// ValidateVendor turns a raw row into a vendor. It returns every problem
// found in the row, not just the first; a non-empty message list means the
// row must not be inserted. Unknown service types or tags are reported
// while the names that do resolve are still kept on the vendor.
func ValidateVendor(rec Record, lk Lookups) (domain.Vendor, []string) {
	var msgs []string

	for _, f := range vendorRequired {
		if field(rec, f.column) == "" {
			msgs = append(msgs, f.label+" is required")
		}
	}

	v := domain.Vendor{
		ID:            uuid.New(),
		Name:          field(rec, ColName),
		ContactPerson: field(rec, ColContactPerson),
		Email:         field(rec, ColEmail),
		Phone:         field(rec, ColPhone),
		Address:       field(rec, ColAddress),
		ServiceArea:   field(rec, ColServiceArea),
	}

	if pr, ok := parsePriceRange(field(rec, ColPriceRange)); ok {
		v.PriceRange = pr
	} else {
		msgs = append(msgs, MsgPriceRange)
	}

	if rate, ok := parseCommissionRate(field(rec, ColCommissionRate)); ok {
		v.CommissionRate = rate
	} else {
		msgs = append(msgs, MsgCommissionRate)
	}

	for _, name := range domain.SplitList(rec[ColServiceTypes]) {
		id, ok := lk.ServiceTypes.Lookup(name)
		if !ok {
			msgs = append(msgs, fmt.Sprintf("Service type %q not found", name))
			continue
		}
		v.ServiceTypeIDs = appendUnique(v.ServiceTypeIDs, id)
	}

	for _, name := range domain.SplitList(rec[ColTags]) {
		id, ok := lk.Tags.Lookup(name)
		if !ok {
			msgs = append(msgs, fmt.Sprintf("Tag %q not found", name))
			continue
		}
		v.TagIDs = appendUnique(v.TagIDs, id)
	}

	return v, msgs
}

// ValidateTag turns a raw row into a tag.
func ValidateTag(rec Record) (domain.Tag, []string) {
	t := domain.Tag{
		ID:          uuid.New(),
		Name:        field(rec, ColName),
		Description: optional(rec, ColDescription),
	}
	if t.Name == "" {
		return t, []string{"Name is required"}
	}
	return t, nil
}

// ValidateLocationTag turns a raw row into a location tag.
func ValidateLocationTag(rec Record) (domain.LocationTag, []string) {
	t := domain.LocationTag{
		ID:      uuid.New(),
		Name:    field(rec, ColName),
		Country: optional(rec, ColCountry),
		Region:  optional(rec, ColRegion),
	}
	if t.Name == "" {
		return t, []string{"Name is required"}
	}
	return t, nil
}

func parsePriceRange(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < domain.MinPriceRange || n > domain.MaxPriceRange {
		return 0, false
	}
	return n, true
}

func parseCommissionRate(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.LessThan(domain.MinCommissionRate) || d.GreaterThan(domain.MaxCommissionRate) {
		return decimal.Decimal{}, false
	}
	// Stored as NUMERIC(5,4); finer rates would be rounded silently.
	if !d.Round(domain.CommissionRateScale).Equal(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

func field(rec Record, col string) string {
	return strings.TrimSpace(rec[col])
}

func optional(rec Record, col string) *string {
	v := field(rec, col)
	if v == "" {
		return nil
	}
	return &v
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
