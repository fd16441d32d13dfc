// Package export writes campaign quotes to XLSX workbooks for sharing
// with clients.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
)

const moneyFormat = "#,##0.00"

// QuoteWorkbook is the content of one exported quote.
type QuoteWorkbook struct {
	Product  string
	Delivery model.DeliveryType
	Routes   []model.Route
	Quote    pricing.Quote
	ROI      *roi.Report // optional sheet
}

// WriteQuoteXLSX writes the workbook to path with Summary and Routes
// sheets, plus an ROI sheet when projections are present.
func WriteQuoteXLSX(path string, wb QuoteWorkbook) error {
	f := xlsx.NewFile()

	if err := writeSummarySheet(f, wb); err != nil {
		return err
	}
	if err := writeRoutesSheet(f, wb); err != nil {
		return err
	}
	if wb.ROI != nil {
		if err := writeROISheet(f, wb.ROI); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func writeSummarySheet(f *xlsx.File, wb QuoteWorkbook) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(value)
	}
	addMoney := func(key string, value float64) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetFloatWithFormat(value, moneyFormat)
	}

	q := wb.Quote
	addKV("Product", wb.Product)
	addKV("Delivery", string(wb.Delivery))
	addKV("Routes", strconv.Itoa(len(wb.Routes)))
	addKV("Addresses", strconv.Itoa(q.Quantity))

	if q.BelowMinimum {
		addKV("Status", "below minimum quantity")
		addKV("Minimum", strconv.Itoa(q.MinimumQuantity))
		return nil
	}

	addKV("Tier", q.TierLabel)
	addMoney("Unit rate", q.UnitRate)
	addMoney("Total", q.Total)
	if q.NextTierLabel != "" {
		addKV("Next tier", q.NextTierLabel)
		addKV("Addresses until next tier", strconv.Itoa(q.UnitsUntilNextTier))
		addMoney("Potential savings", q.PotentialSavings)
	}
	return nil
}

func writeRoutesSheet(f *xlsx.File, wb QuoteWorkbook) error {
	sheet, err := f.AddSheet("Routes")
	if err != nil {
		return eris.Wrap(err, "export: add routes sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Route", "ZIP", "Residential", "Business", "Delivered", "Avg income", "Median age"} {
		header.AddCell().SetString(h)
	}

	for _, r := range wb.Routes {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.ZIPCode)
		row.AddCell().SetInt(r.ResidentialCount)
		row.AddCell().SetInt(r.BusinessCount)
		row.AddCell().SetInt(r.CountFor(wb.Delivery))

		income := row.AddCell()
		age := row.AddCell()
		if r.Demographics != nil && r.Demographics.AverageIncome != nil {
			income.SetFloatWithFormat(*r.Demographics.AverageIncome, moneyFormat)
		}
		if r.Demographics != nil && r.Demographics.MedianAge != nil {
			age.SetFloat(*r.Demographics.MedianAge)
		}
	}
	return nil
}

func writeROISheet(f *xlsx.File, report *roi.Report) error {
	sheet, err := f.AddSheet("ROI")
	if err != nil {
		return eris.Wrap(err, "export: add roi sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Scenario", "Responses", "Customers", "Revenue", "Net profit", "ROI multiple", "CAC"} {
		header.AddCell().SetString(h)
	}

	for _, p := range []roi.Projection{report.Baseline, report.Typical, report.BestInClass} {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Scenario)
		row.AddCell().SetFloat(p.Responses)
		row.AddCell().SetFloat(p.Customers)
		row.AddCell().SetFloatWithFormat(p.Revenue, moneyFormat)
		row.AddCell().SetFloatWithFormat(p.NetProfit, moneyFormat)
		row.AddCell().SetFloat(p.ROIMultiple)
		row.AddCell().SetFloatWithFormat(p.CAC, moneyFormat)
	}

	summary := sheet.AddRow()
	summary.AddCell().SetString("Break-even customers")
	summary.AddCell().SetFloat(report.BreakEvenCustomers)
	return nil
}
