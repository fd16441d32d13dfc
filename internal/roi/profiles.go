package roi

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// builtinProfiles are the shipped industry benchmarks. Response rates track
// published EDDM response ranges (roughly 0.5–2% with strong offers);
// conversion and economics are per-industry planning assumptions.
var builtinProfiles = map[string]IndustryProfile{
	"restaurant": {
		ID:          "restaurant",
		Name:        "Restaurants & Takeout",
		Baseline:    ScenarioRates{ResponseRate: 0.005, ConversionRate: 0.50},
		Typical:     ScenarioRates{ResponseRate: 0.010, ConversionRate: 0.60},
		BestInClass: ScenarioRates{ResponseRate: 0.020, ConversionRate: 0.70},
		Economics:   Economics{AvgTicket: 35, RepeatPurchases: 6, Margin: 0.30},
	},
	"dental": {
		ID:          "dental",
		Name:        "Dental Practices",
		Baseline:    ScenarioRates{ResponseRate: 0.003, ConversionRate: 0.40},
		Typical:     ScenarioRates{ResponseRate: 0.006, ConversionRate: 0.50},
		BestInClass: ScenarioRates{ResponseRate: 0.012, ConversionRate: 0.60},
		Economics:   Economics{AvgTicket: 650, RepeatPurchases: 3, Margin: 0.40},
	},
	"home_services": {
		ID:          "home_services",
		Name:        "Home Services (HVAC, plumbing, roofing)",
		Baseline:    ScenarioRates{ResponseRate: 0.004, ConversionRate: 0.30},
		Typical:     ScenarioRates{ResponseRate: 0.008, ConversionRate: 0.40},
		BestInClass: ScenarioRates{ResponseRate: 0.015, ConversionRate: 0.50},
		Economics:   Economics{AvgTicket: 450, RepeatPurchases: 2, Margin: 0.45},
	},
	"real_estate": {
		ID:          "real_estate",
		Name:        "Real Estate Agents",
		Baseline:    ScenarioRates{ResponseRate: 0.002, ConversionRate: 0.10},
		Typical:     ScenarioRates{ResponseRate: 0.005, ConversionRate: 0.15},
		BestInClass: ScenarioRates{ResponseRate: 0.010, ConversionRate: 0.20},
		Economics:   Economics{AvgTicket: 9000, RepeatPurchases: 1, Margin: 0.85},
	},
	"fitness": {
		ID:          "fitness",
		Name:        "Gyms & Fitness Studios",
		Baseline:    ScenarioRates{ResponseRate: 0.004, ConversionRate: 0.35},
		Typical:     ScenarioRates{ResponseRate: 0.009, ConversionRate: 0.45},
		BestInClass: ScenarioRates{ResponseRate: 0.018, ConversionRate: 0.55},
		Economics:   Economics{AvgTicket: 55, RepeatPurchases: 9, Margin: 0.65},
	},
}

// Profiles returns the industry profile registry, optionally extended or
// overridden from a YAML file. Built-in profiles remain available unless a
// file entry reuses their ID.
func Profiles(path string) (map[string]IndustryProfile, error) {
	out := make(map[string]IndustryProfile, len(builtinProfiles))
	for id, p := range builtinProfiles {
		out[id] = p
	}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roi: read profiles %s", path)
	}

	var file struct {
		Profiles []IndustryProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "roi: parse profiles %s", path)
	}

	for _, p := range file.Profiles {
		if p.ID == "" {
			return nil, eris.Errorf("roi: profile without id in %s", path)
		}
		out[p.ID] = p
	}
	return out, nil
}

// ProfileIDs returns the sorted IDs of the given registry, for help text
// and API listings.
func ProfileIDs(profiles map[string]IndustryProfile) []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
