package main

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/eddm-planner/internal/optimizer"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
)

// newPrinter returns a message printer that groups digits, so quantities and
// dollar amounts read like "12,450" instead of "12450".
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

func writeQuote(w io.Writer, q pricing.Quote, routeCount int) {
	p := newPrinter()

	p.Fprintf(w, "Product:    %s\n", q.Product)
	if routeCount >= 0 {
		p.Fprintf(w, "Routes:     %d\n", routeCount)
	}
	p.Fprintf(w, "Addresses:  %d\n", q.Quantity)

	if q.BelowMinimum {
		p.Fprintf(w, "\nBelow the %d-piece minimum; contact sales for a custom quote.\n", q.MinimumQuantity)
		return
	}

	p.Fprintf(w, "Tier:       %s at $%.3f/piece\n", q.TierLabel, q.TierRate)
	if q.FixedPerUnit > 0 {
		p.Fprintf(w, "Add-ons:    $%.3f/piece\n", q.FixedPerUnit)
	}
	p.Fprintf(w, "Total:      $%.2f\n", q.Total)

	if q.NextTierLabel != "" {
		p.Fprintf(w, "\nNext tier (%s) is %d addresses away", q.NextTierLabel, q.UnitsUntilNextTier)
		if q.PotentialSavings > 0 {
			p.Fprintf(w, " and would save $%.2f", q.PotentialSavings)
		}
		p.Fprintf(w, ".\n")
	}
}

func writeROIReport(w io.Writer, rep roi.Report) {
	p := newPrinter()

	p.Fprintf(w, "\nROI projection for %d addresses at $%.2f:\n", rep.TotalAddresses, rep.CampaignCost)
	p.Fprintf(w, "%-15s %10s %10s %12s %12s %8s %10s\n",
		"scenario", "responses", "customers", "revenue", "net profit", "roi", "cac")
	for _, proj := range []roi.Projection{rep.Baseline, rep.Typical, rep.BestInClass} {
		p.Fprintf(w, "%-15s %10.0f %10.1f %12.2f %12.2f %7.1fx %10.2f\n",
			proj.Scenario, proj.Responses, proj.Customers, proj.Revenue,
			proj.NetProfit, proj.ROIMultiple, proj.CAC)
	}
	p.Fprintf(w, "Break-even: %.1f customers\n", rep.BreakEvenCustomers)
}

func writeOptimizeResult(w io.Writer, res optimizer.Result) {
	p := newPrinter()

	p.Fprintf(w, "Selected:   %d routes\n", len(res.RouteIDs))
	p.Fprintf(w, "Addresses:  %d\n", res.TotalAddresses)
	p.Fprintf(w, "Cost:       $%.2f\n", res.TotalCost)
	for _, id := range res.RouteIDs {
		p.Fprintf(w, "  %s\n", id)
	}
	if res.Forced {
		p.Fprintf(w, "\nNo combination fits the budget; the single best route was included anyway.\n")
	}
	if res.BelowMinimum {
		p.Fprintf(w, "Selection is below the product minimum; the cost shown is an estimate.\n")
	}
}
