package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vendor is a supplier the agency books services from.
type Vendor struct {
	ID             uuid.UUID
	Name           string
	ContactPerson  string
	Email          string
	Phone          string
	Address        string
	ServiceArea    string
	PriceRange     int
	CommissionRate decimal.Decimal
	Rating         *decimal.Decimal

	// Resolved foreign keys. Persisted by the relation tables, not the vendors row.
	ServiceTypeIDs []uuid.UUID
	TagIDs         []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VendorListing is a vendor with its relations resolved to names.
type VendorListing struct {
	Vendor
	ServiceTypes []string
	Tags         []string
}

const (
	MinPriceRange = 1
	MaxPriceRange = 5

	// CommissionRateScale is the number of decimal places commission rates keep.
	CommissionRateScale = 4
)

var (
	MinCommissionRate = decimal.Zero
	MaxCommissionRate = decimal.NewFromInt(1)
)
