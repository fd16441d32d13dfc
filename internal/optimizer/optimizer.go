// Package optimizer chooses a near-optimal route subset under a dollar
// budget using greedy value-density selection against the tiered price of
// the running total.
package optimizer

import (
	"sort"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/pricing"
)

// Result describes an optimized selection.
type Result struct {
	RouteIDs       model.Selection `json:"route_ids"`
	TotalAddresses int             `json:"total_addresses"`
	TotalCost      float64         `json:"total_cost"`
	BelowMinimum   bool            `json:"below_minimum"`
	Forced         bool            `json:"forced"`
}

type candidate struct {
	id      string
	count   int
	density float64
}

// Optimize greedily selects routes to maximize addresses delivered without
// exceeding budget. Routes are ranked by value density (address count over
// estimated standalone cost) and added in that order, re-pricing the running
// total after each tentative addition; a route whose inclusion would bust
// the budget is skipped, and cheaper routes further down the ranking are
// still tried. If nothing fits and at least one route exists, the single
// highest-density route is force-included so the caller always has a
// starting point (and is responsible for surfacing a below-minimum or
// over-budget warning).
//
// Deterministic: ties in value density keep input order (stable sort).
func Optimize(routes []model.Route, dt model.DeliveryType, table pricing.Table, budget float64) Result {
	var cands []candidate
	for _, r := range routes {
		count := r.CountFor(dt)
		if count <= 0 {
			continue
		}
		cands = append(cands, candidate{
			id:      r.ID,
			count:   count,
			density: float64(count) / estimateCost(table, count),
		})
	}
	if len(cands) == 0 {
		return Result{}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].density > cands[j].density
	})

	var res Result
	total := 0
	for _, c := range cands {
		newTotal := total + c.count
		if cost := estimateCost(table, newTotal); cost <= budget {
			res.RouteIDs = append(res.RouteIDs, c.id)
			total = newTotal
			res.TotalCost = cost
		}
	}

	if len(res.RouteIDs) == 0 && budget > 0 {
		// Even the best single route busts the budget; include it anyway.
		top := cands[0]
		res.RouteIDs = model.Selection{top.id}
		res.Forced = true
		total = top.count
		res.TotalCost = estimateCost(table, total)
	}

	res.TotalAddresses = total
	_, priced := table.RateFor(total)
	res.BelowMinimum = total > 0 && !priced
	return res
}

// estimateCost prices a quantity for ranking and budget checks. Quantities
// below the table minimum cannot be quoted, so they are estimated at the
// lowest tier's rate; the BelowMinimum flag on the result tells the caller
// the final total still needs a custom quote.
func estimateCost(table pricing.Table, quantity int) float64 {
	rate, ok := table.RateFor(quantity)
	if !ok {
		rate = table.Tiers[0].Rate
	}
	return float64(quantity) * (rate + table.FixedPerUnit())
}
