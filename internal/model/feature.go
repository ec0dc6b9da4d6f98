package model

// FeatureKind tells how a column is parsed and encoded.
type FeatureKind string

const (
	KindCategorical FeatureKind = "categorical" // dropdown, one-hot encoded
	KindInteger     FeatureKind = "integer"     // whole numbers
	KindFloat       FeatureKind = "float"       // real numbers
)

// IsNumeric reports whether the kind is fed to the model as a number.
func (k FeatureKind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// Column names of the SME sales dataset.
const (
	ColBusinessType   = "business_type"
	ColLocationType   = "location_type"
	ColState          = "state"
	ColNumEmployees   = "num_employees"
	ColMarketingSpend = "marketing_spend_naira"
	ColInventoryValue = "inventory_value_naira"
	ColMonthlySales   = "monthly_sales_thousands"
)

// DefaultTarget is the column the product predicts.
const DefaultTarget = ColMonthlySales

// FeatureMeta describes one input column and how the form renders it.
type FeatureMeta struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    FeatureKind `json:"kind"`
	Options []string    `json:"options,omitempty"` // categorical vocabulary
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
	Default float64     `json:"default"`
	Step    float64     `json:"step"`
}

// HasOption reports whether v is part of the vocabulary.
func (f FeatureMeta) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

var (
	BusinessTypes = []string{"Retail", "Restaurant", "Salon", "Electronics", "Pharmacy", "Supermarket", "Fashion"}
	LocationTypes = []string{"Market", "Mall", "Street", "Estate", "Online"}
	States        = []string{"Lagos", "Abuja", "Kano", "Port Harcourt", "Ibadan", "Enugu", "Rivers", "Oyo", "Kaduna", "Delta"}
)

// Catalog returns the metadata of the documented input columns, in form order.
func Catalog() []FeatureMeta {
	return []FeatureMeta{
		{Name: ColBusinessType, Label: "Business Type", Kind: KindCategorical, Options: clone(BusinessTypes)},
		{Name: ColLocationType, Label: "Location Type", Kind: KindCategorical, Options: clone(LocationTypes)},
		{Name: ColState, Label: "State", Kind: KindCategorical, Options: clone(States)},
		{Name: ColNumEmployees, Label: "Number of Employees", Kind: KindInteger, Min: 1, Max: 20, Default: 3, Step: 1},
		{Name: ColMarketingSpend, Label: "Monthly Marketing Spend (₦)", Kind: KindInteger, Min: 5000, Max: 200000, Default: 30000, Step: 1000},
		{Name: ColInventoryValue, Label: "Inventory Value (₦)", Kind: KindInteger, Min: 100000, Max: 5000000, Default: 500000, Step: 10000},
	}
}

// CatalogFeature looks up a catalog entry by column name.
func CatalogFeature(name string) (FeatureMeta, bool) {
	for _, f := range Catalog() {
		if f.Name == name {
			return f, true
		}
	}
	return FeatureMeta{}, false
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
