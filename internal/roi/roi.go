// Package roi projects campaign outcomes from static industry profiles.
// Three scenarios (baseline, typical, best-in-class) are computed eagerly
// with closed-form arithmetic; every division guards a zero denominator by
// returning 0 rather than NaN or Inf.
package roi

// ScenarioRates holds the response and conversion rates for one scenario.
type ScenarioRates struct {
	ResponseRate   float64 `yaml:"response_rate" json:"response_rate"`
	ConversionRate float64 `yaml:"conversion_rate" json:"conversion_rate"`
}

// Economics holds the fixed economic constants of an industry profile.
type Economics struct {
	AvgTicket       float64 `yaml:"avg_ticket" json:"avg_ticket"`
	RepeatPurchases float64 `yaml:"repeat_purchases" json:"repeat_purchases"`
	Margin          float64 `yaml:"margin" json:"margin"`
}

// LTV returns customer lifetime value: average ticket times expected
// purchase count.
func (e Economics) LTV() float64 {
	return e.AvgTicket * e.RepeatPurchases
}

// IndustryProfile is a named bundle of scenario rates and economics.
// Profiles are static reference data; the planner never mutates or derives
// new ones.
type IndustryProfile struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Baseline    ScenarioRates `yaml:"baseline" json:"baseline"`
	Typical     ScenarioRates `yaml:"typical" json:"typical"`
	BestInClass ScenarioRates `yaml:"best_in_class" json:"best_in_class"`
	Economics   Economics     `yaml:"economics" json:"economics"`
}

// Projection is one scenario's projected outcome.
type Projection struct {
	Scenario              string  `json:"scenario"`
	Responses             float64 `json:"responses"`
	Customers             float64 `json:"customers"`
	Revenue               float64 `json:"revenue"`
	GrossProfit           float64 `json:"gross_profit"`
	NetProfit             float64 `json:"net_profit"`
	ROIMultiple           float64 `json:"roi_multiple"`
	CAC                   float64 `json:"cac"`
	BreakEvenResponseRate float64 `json:"break_even_response_rate"`
}

// Report bundles the three scenario projections with the scenario-
// independent break-even customer count.
type Report struct {
	TotalAddresses     int        `json:"total_addresses"`
	CampaignCost       float64    `json:"campaign_cost"`
	Baseline           Projection `json:"baseline"`
	Typical            Projection `json:"typical"`
	BestInClass        Projection `json:"best_in_class"`
	BreakEvenCustomers float64    `json:"break_even_customers"`
}

// Project computes all three scenario projections for a campaign.
func Project(totalAddresses int, campaignCost float64, p IndustryProfile) Report {
	r := Report{
		TotalAddresses: totalAddresses,
		CampaignCost:   campaignCost,
		Baseline:       project("baseline", totalAddresses, campaignCost, p.Baseline, p.Economics),
		Typical:        project("typical", totalAddresses, campaignCost, p.Typical, p.Economics),
		BestInClass:    project("best_in_class", totalAddresses, campaignCost, p.BestInClass, p.Economics),
	}
	r.BreakEvenCustomers = safeDiv(campaignCost, p.Economics.LTV()*p.Economics.Margin)
	return r
}

func project(name string, addresses int, cost float64, rates ScenarioRates, econ Economics) Projection {
	responses := float64(addresses) * rates.ResponseRate
	customers := responses * rates.ConversionRate
	revenue := customers * econ.LTV()
	gross := revenue * econ.Margin

	return Projection{
		Scenario:    name,
		Responses:   responses,
		Customers:   customers,
		Revenue:     revenue,
		GrossProfit: gross,
		NetProfit:   gross - cost,
		ROIMultiple: safeDiv(gross, cost),
		CAC:         safeDiv(cost, customers),
		BreakEvenResponseRate: safeDiv(
			cost,
			econ.LTV()*econ.Margin*rates.ConversionRate*float64(addresses),
		),
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
