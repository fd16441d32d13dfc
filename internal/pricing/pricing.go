// Package pricing maps campaign quantities to tiered unit rates and totals.
// Tier tables are injected configuration, so print-only and turnkey products
// share one engine. All functions are pure.
package pricing

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// NoMax marks the top tier's open upper bound.
const NoMax = math.MaxInt

// Tier is a quantity range mapped to a fixed unit rate. Max == NoMax means
// the tier is unbounded above.
type Tier struct {
	Min  int     `yaml:"min" mapstructure:"min"`
	Max  int     `yaml:"max" mapstructure:"max"`
	Rate float64 `yaml:"rate" mapstructure:"rate"`
}

// Label renders the tier's quantity range for display, e.g. "1,000–2,499"
// or "10,000+".
func (t Tier) Label() string {
	if t.Max == NoMax {
		return fmt.Sprintf("%s+", groupDigits(t.Min))
	}
	return fmt.Sprintf("%s–%s", groupDigits(t.Min), groupDigits(t.Max))
}

// FixedCost is a per-unit add-on applied on top of the tier rate, such as
// postage or bundling.
type FixedCost struct {
	Name string  `yaml:"name" mapstructure:"name"`
	Rate float64 `yaml:"rate" mapstructure:"rate"`
}

// Table is an ordered, non-overlapping, gap-free tier partition plus fixed
// per-unit add-ons for one product.
type Table struct {
	Product   string      `yaml:"product" mapstructure:"product"`
	Tiers     []Tier      `yaml:"tiers" mapstructure:"tiers"`
	FixedCost []FixedCost `yaml:"fixed_costs" mapstructure:"fixed_costs"`
}

// Validate checks the structural invariants of the table: at least one tier,
// tiers sorted ascending by min, no gaps or overlaps, an unbounded top tier,
// and non-increasing rates. A table that fails validation is a configuration
// error and must be rejected at load time, before any pricing happens.
func (t Table) Validate() error {
	if len(t.Tiers) == 0 {
		return eris.Errorf("pricing: table %q has no tiers", t.Product)
	}

	for i, tier := range t.Tiers {
		if tier.Min < 0 {
			return eris.Errorf("pricing: table %q tier %d has negative min", t.Product, i)
		}
		if tier.Max < tier.Min {
			return eris.Errorf("pricing: table %q tier %d has max below min", t.Product, i)
		}
		if tier.Rate <= 0 {
			return eris.Errorf("pricing: table %q tier %d has non-positive rate", t.Product, i)
		}
		if i == 0 {
			continue
		}
		prev := t.Tiers[i-1]
		if prev.Max == NoMax {
			return eris.Errorf("pricing: table %q tier %d follows an unbounded tier", t.Product, i)
		}
		if tier.Min != prev.Max+1 {
			return eris.Errorf("pricing: table %q has a gap or overlap between tiers %d and %d", t.Product, i-1, i)
		}
		if tier.Rate > prev.Rate {
			return eris.Errorf("pricing: table %q rate increases at tier %d", t.Product, i)
		}
	}

	if top := t.Tiers[len(t.Tiers)-1]; top.Max != NoMax {
		return eris.Errorf("pricing: table %q top tier is bounded; set max to -1 in config", t.Product)
	}
	return nil
}

// MinimumQuantity returns the smallest quantity the table can price.
func (t Table) MinimumQuantity() int {
	if len(t.Tiers) == 0 {
		return 0
	}
	return t.Tiers[0].Min
}

// FixedPerUnit returns the sum of all fixed per-unit add-ons.
func (t Table) FixedPerUnit() float64 {
	sum := 0.0
	for _, fc := range t.FixedCost {
		sum += fc.Rate
	}
	return sum
}

// RateFor returns the tier unit rate for the given quantity via a linear
// scan. The second return is false when the quantity is below the lowest
// tier's minimum — a valid "below minimum" state, not an error.
func (t Table) RateFor(quantity int) (float64, bool) {
	for _, tier := range t.Tiers {
		if quantity >= tier.Min && quantity <= tier.Max {
			return tier.Rate, true
		}
	}
	return 0, false
}

// Quote is the result of pricing a quantity against a table.
type Quote struct {
	Product         string  `json:"product"`
	Quantity        int     `json:"quantity"`
	BelowMinimum    bool    `json:"below_minimum"`
	MinimumQuantity int     `json:"minimum_quantity,omitempty"`

	TierRate     float64 `json:"tier_rate,omitempty"`
	FixedPerUnit float64 `json:"fixed_per_unit,omitempty"`
	UnitRate     float64 `json:"unit_rate,omitempty"`
	Total        float64 `json:"total,omitempty"`
	TierLabel    string  `json:"tier_label,omitempty"`

	NextTierLabel      string  `json:"next_tier_label,omitempty"`
	UnitsUntilNextTier int     `json:"units_until_next_tier,omitempty"`
	PotentialSavings   float64 `json:"potential_savings,omitempty"`
}

// PriceFor prices a quantity against the table. Below-minimum quantities
// yield a Quote with BelowMinimum set and no cost fields; callers must
// branch on it rather than price against the lowest tier by accident.
//
// PotentialSavings is the tier-jump total-cost delta: the tier-rate cost at
// the current quantity minus the tier-rate cost of buying the next tier's
// minimum quantity at the next tier's rate, clamped at zero. (The per-unit
// rate-delta variant was considered and rejected; see DESIGN.md.)
func (t Table) PriceFor(quantity int) Quote {
	q := Quote{Product: t.Product, Quantity: quantity}

	idx := -1
	for i, tier := range t.Tiers {
		if quantity >= tier.Min && quantity <= tier.Max {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.BelowMinimum = true
		q.MinimumQuantity = t.MinimumQuantity()
		return q
	}

	tier := t.Tiers[idx]
	q.TierRate = tier.Rate
	q.FixedPerUnit = t.FixedPerUnit()
	q.UnitRate = tier.Rate + q.FixedPerUnit
	q.Total = float64(quantity) * q.UnitRate
	q.TierLabel = tier.Label()

	if idx+1 < len(t.Tiers) {
		next := t.Tiers[idx+1]
		q.NextTierLabel = next.Label()
		q.UnitsUntilNextTier = next.Min - quantity

		currentAtTierRate := float64(quantity) * tier.Rate
		jumpAtNextRate := float64(next.Min) * next.Rate
		if savings := currentAtTierRate - jumpAtNextRate; savings > 0 {
			q.PotentialSavings = savings
		}
	}
	return q
}

// groupDigits formats a non-negative integer with comma grouping. Kept local
// so the pricing package stays dependency-free for callers that only need
// math, not display.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
