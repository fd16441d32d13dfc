package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/optimizer"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
)

func TestWriteQuote(t *testing.T) {
	table := pricing.DefaultTables()[pricing.ProductTurnkey]
	var buf bytes.Buffer
	writeQuote(&buf, table.PriceFor(2450), 12)

	out := buf.String()
	assert.Contains(t, out, "turnkey")
	assert.Contains(t, out, "Routes:     12")
	assert.Contains(t, out, "2,450")
	assert.Contains(t, out, "$1,114.75")
	assert.Contains(t, out, "50 addresses away")
	assert.Contains(t, out, "$116.50")
}

func TestWriteQuote_BelowMinimum(t *testing.T) {
	table := pricing.DefaultTables()[pricing.ProductPrintOnly]
	var buf bytes.Buffer
	writeQuote(&buf, table.PriceFor(300), 2)

	out := buf.String()
	assert.Contains(t, out, "500-piece minimum")
	assert.NotContains(t, out, "Total")
}

func TestWriteQuote_NoRouteCount(t *testing.T) {
	table := pricing.DefaultTables()[pricing.ProductPrintOnly]
	var buf bytes.Buffer
	writeQuote(&buf, table.PriceFor(1000), -1)

	assert.NotContains(t, buf.String(), "Routes:")
}

func TestWriteROIReport(t *testing.T) {
	profiles, err := roi.Profiles("")
	if err != nil {
		t.Fatal(err)
	}
	rep := roi.Project(5000, 2275, profiles["restaurant"])

	var buf bytes.Buffer
	writeROIReport(&buf, rep)

	out := buf.String()
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "typical")
	assert.Contains(t, out, "best_in_class")
	assert.Contains(t, out, "Break-even")
}

func TestWriteOptimizeResult_Forced(t *testing.T) {
	table := pricing.DefaultTables()[pricing.ProductPrintOnly]
	routes := []model.Route{model.NewRoute("33815-A", "33815", nil, 5000, 0, nil)}

	res := optimizer.Optimize(routes, model.DeliveryAll, table, 10)
	var buf bytes.Buffer
	writeOptimizeResult(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "33815-A")
	assert.Contains(t, out, "included anyway")
}
