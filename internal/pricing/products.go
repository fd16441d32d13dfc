package pricing

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Product identifiers for the built-in tier tables.
const (
	ProductPrintOnly = "print_only"
	ProductTurnkey   = "turnkey"
)

// DefaultTables returns the built-in product tier tables. Turnkey is
// all-inclusive (print tier rate plus postage and bundling per piece);
// print-only carries no fixed add-ons.
func DefaultTables() map[string]Table {
	return map[string]Table{
		ProductPrintOnly: {
			Product: ProductPrintOnly,
			Tiers: []Tier{
				{Min: 500, Max: 999, Rate: 0.18},
				{Min: 1000, Max: 2499, Rate: 0.14},
				{Min: 2500, Max: 4999, Rate: 0.10},
				{Min: 5000, Max: NoMax, Rate: 0.08},
			},
		},
		ProductTurnkey: {
			Product: ProductTurnkey,
			Tiers: []Tier{
				{Min: 500, Max: 999, Rate: 0.23},
				{Min: 1000, Max: 2499, Rate: 0.17},
				{Min: 2500, Max: 4999, Rate: 0.12},
				{Min: 5000, Max: 9999, Rate: 0.09},
				{Min: 10000, Max: NoMax, Rate: 0.07},
			},
			FixedCost: []FixedCost{
				{Name: "postage", Rate: 0.25},
				{Name: "bundling", Rate: 0.035},
			},
		},
	}
}

// tableFile is the YAML shape for a tier-table override file. Tier max of -1
// (or omitted on the last tier) means unbounded.
type tableFile struct {
	Products []struct {
		Product string `yaml:"product"`
		Tiers   []struct {
			Min  int     `yaml:"min"`
			Max  *int    `yaml:"max"`
			Rate float64 `yaml:"rate"`
		} `yaml:"tiers"`
		FixedCosts []FixedCost `yaml:"fixed_costs"`
	} `yaml:"products"`
}

// LoadTables reads product tier tables from a YAML file and validates each.
// An empty path returns the built-in defaults.
func LoadTables(path string) (map[string]Table, error) {
	if path == "" {
		return DefaultTables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pricing: read tables %s", path)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "pricing: parse tables %s", path)
	}

	tables := make(map[string]Table, len(f.Products))
	for _, p := range f.Products {
		t := Table{Product: p.Product, FixedCost: p.FixedCosts}
		for _, tier := range p.Tiers {
			max := NoMax
			if tier.Max != nil && *tier.Max >= 0 {
				max = *tier.Max
			}
			t.Tiers = append(t.Tiers, Tier{Min: tier.Min, Max: max, Rate: tier.Rate})
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tables[p.Product] = t
	}
	if len(tables) == 0 {
		return nil, eris.Errorf("pricing: tables file %s defines no products", path)
	}
	return tables, nil
}
