package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
)

func sampleWorkbook(t *testing.T) QuoteWorkbook {
	t.Helper()
	income := 72500.0
	routes := []model.Route{
		model.NewRoute("33815-C001", "33815", nil, 450, 32,
			&model.Demographics{AverageIncome: &income}),
		model.NewRoute("33815-C002", "33815", nil, 0, 120, nil),
	}

	table := pricing.DefaultTables()[pricing.ProductTurnkey]
	quote := table.PriceFor(2450)

	profile := roi.IndustryProfile{
		ID:          "test",
		Name:        "Test",
		Baseline:    roi.ScenarioRates{ResponseRate: 0.005, ConversionRate: 0.4},
		Typical:     roi.ScenarioRates{ResponseRate: 0.01, ConversionRate: 0.5},
		BestInClass: roi.ScenarioRates{ResponseRate: 0.02, ConversionRate: 0.6},
		Economics:   roi.Economics{AvgTicket: 100, RepeatPurchases: 4, Margin: 0.5},
	}
	report := roi.Project(2450, quote.Total, profile)

	return QuoteWorkbook{
		Product:  pricing.ProductTurnkey,
		Delivery: model.DeliveryAll,
		Routes:   routes,
		Quote:    quote,
		ROI:      &report,
	}
}

func TestWriteQuoteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.xlsx")
	require.NoError(t, WriteQuoteXLSX(path, sampleWorkbook(t)))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Product", summary.Rows[0].Cells[0].String())
	assert.Equal(t, pricing.ProductTurnkey, summary.Rows[0].Cells[1].String())
	assert.Equal(t, "Addresses", summary.Rows[3].Cells[0].String())
	assert.Equal(t, "2450", summary.Rows[3].Cells[1].String())

	routes, ok := f.Sheet["Routes"]
	require.True(t, ok)
	require.Len(t, routes.Rows, 3) // header + 2 routes
	assert.Equal(t, "Route", routes.Rows[0].Cells[0].String())
	assert.Equal(t, "33815-C001", routes.Rows[1].Cells[0].String())
	assert.Equal(t, "33815-C002", routes.Rows[2].Cells[0].String())

	roiSheet, ok := f.Sheet["ROI"]
	require.True(t, ok)
	require.Len(t, roiSheet.Rows, 5) // header + 3 scenarios + break-even
	assert.Equal(t, "baseline", roiSheet.Rows[1].Cells[0].String())
	assert.Equal(t, "typical", roiSheet.Rows[2].Cells[0].String())
	assert.Equal(t, "best_in_class", roiSheet.Rows[3].Cells[0].String())
	assert.Equal(t, "Break-even customers", roiSheet.Rows[4].Cells[0].String())
}

func TestWriteQuoteXLSX_BelowMinimum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.xlsx")

	table := pricing.DefaultTables()[pricing.ProductPrintOnly]
	wb := QuoteWorkbook{
		Product:  pricing.ProductPrintOnly,
		Delivery: model.DeliveryResidential,
		Routes:   []model.Route{model.NewRoute("33815-C001", "33815", nil, 300, 0, nil)},
		Quote:    table.PriceFor(300),
	}
	require.NoError(t, WriteQuoteXLSX(path, wb))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2) // no ROI sheet

	summary := f.Sheet["Summary"]
	assert.Equal(t, "Status", summary.Rows[4].Cells[0].String())
	assert.Equal(t, "below minimum quantity", summary.Rows[4].Cells[1].String())
	assert.Equal(t, "Minimum", summary.Rows[5].Cells[0].String())
	assert.Equal(t, "500", summary.Rows[5].Cells[1].String())
}
