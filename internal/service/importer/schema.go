package importer

// CSV column names.
const (
	ColName           = "name"
	ColContactPerson  = "contactPerson"
	ColEmail          = "email"
	ColPhone          = "phone"
	ColAddress        = "address"
	ColServiceArea    = "serviceArea"
	ColPriceRange     = "priceRange"
	ColCommissionRate = "commissionRate"
	ColServiceTypes   = "serviceTypes"
	ColTags           = "tags"
	ColDescription    = "description"
	ColCountry        = "country"
	ColRegion         = "region"
)

// Schema describes the CSV layout of an entity. Export files use Columns,
// so an exported file can be imported again unchanged.
type Schema struct {
	Columns  []string
	Required []string
}

var schemas = map[Entity]Schema{
	EntityVendors: {
		Columns: []string{
			ColName, ColContactPerson, ColEmail, ColPhone, ColAddress, ColServiceArea,
			ColPriceRange, ColCommissionRate, ColServiceTypes, ColTags,
		},
		Required: []string{
			ColName, ColContactPerson, ColEmail, ColPhone, ColAddress, ColServiceArea,
			ColPriceRange, ColCommissionRate,
		},
	},
	EntityTags: {
		Columns:  []string{ColName, ColDescription},
		Required: []string{ColName},
	},
	EntityLocationTags: {
		Columns:  []string{ColName, ColCountry, ColRegion},
		Required: []string{ColName},
	},
}

// SchemaFor returns the CSV layout for e.
func SchemaFor(e Entity) (Schema, bool) {
	s, ok := schemas[e]
	return s, ok
}
