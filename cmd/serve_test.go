package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/optimizer"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
)

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	switch v := payload.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	rr := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestQuoteEndpoint(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	rr := doJSON(t, router, http.MethodPost, "/api/quote", map[string]any{
		"quantity": 2450,
		"product":  "turnkey",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	assert.False(t, quote.BelowMinimum)
	assert.InDelta(t, 0.17, quote.TierRate, 1e-9)
	assert.InDelta(t, 2450*(0.17+0.25+0.035), quote.Total, 1e-6)
}

func TestQuoteEndpoint_BelowMinimum(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	rr := doJSON(t, router, http.MethodPost, "/api/quote", map[string]any{
		"quantity": 300,
		"product":  "print_only",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	assert.True(t, quote.BelowMinimum)
	assert.Equal(t, 500, quote.MinimumQuantity)
}

func TestQuoteEndpoint_BadRequests(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	tests := []struct {
		name    string
		payload any
		wantMsg string
	}{
		{"invalid json", "not json", "invalid request body"},
		{"negative quantity", map[string]any{"quantity": -1, "product": "turnkey"}, "negative"},
		{"unknown product", map[string]any{"quantity": 1000, "product": "skywriting"}, "unknown product"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/quote", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMsg)
		})
	}
}

func TestROIEndpoint(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	rr := doJSON(t, router, http.MethodPost, "/api/roi", map[string]any{
		"addresses": 5000,
		"cost":      2275.0,
		"industry":  "restaurant",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var rep roi.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, 5000, rep.TotalAddresses)
	assert.InDelta(t, 25, rep.Baseline.Responses, 1e-9) // 5000 × 0.5%
	assert.Greater(t, rep.BreakEvenCustomers, 0.0)
}

func TestROIEndpoint_UnknownIndustry(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	rr := doJSON(t, router, http.MethodPost, "/api/roi", map[string]any{
		"addresses": 5000,
		"cost":      2275.0,
		"industry":  "submarines",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown industry")
}

func TestOptimizeEndpoint(t *testing.T) {
	setTestConfig(t)
	env := newTestEnv(nil)
	demo := &model.Demographics{AverageIncome: fptr(72500)}
	env.store.(*memStore).batches["33815"] = []model.Route{
		model.NewRoute("33815-A", "33815", nil, 800, 0, demo),
		model.NewRoute("33815-B", "33815", nil, 600, 0, demo),
	}
	router := newRouter(env)

	rr := doJSON(t, router, http.MethodPost, "/api/optimize", map[string]any{
		"zips":     []string{"33815"},
		"budget":   1000.0,
		"delivery": "residential",
		"product":  "print_only",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var res optimizer.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 1400, res.TotalAddresses)
	assert.LessOrEqual(t, res.TotalCost, 1000.0)
	assert.Len(t, res.RouteIDs, 2)
}

func TestOptimizeEndpoint_BadRequests(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	tests := []struct {
		name    string
		payload map[string]any
		wantMsg string
	}{
		{"missing zips", map[string]any{"budget": 100.0, "product": "turnkey"}, "zips is required"},
		{"zero budget", map[string]any{"zips": []string{"33815"}, "product": "turnkey"}, "budget must be positive"},
		{"bad delivery", map[string]any{"zips": []string{"33815"}, "budget": 100.0, "delivery": "drone", "product": "turnkey"}, "unknown delivery type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/optimize", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMsg)
		})
	}
}

func TestRoutesEndpoint(t *testing.T) {
	setTestConfig(t)
	env := newTestEnv(nil)
	demo := &model.Demographics{AverageIncome: fptr(72500)}
	env.store.(*memStore).batches["33815"] = testRoutes("33815", demo)
	router := newRouter(env)

	req := httptest.NewRequest(http.MethodGet, "/api/routes?zips=33815", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string][]model.Route
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body["33815"], 2)
	assert.Equal(t, "33815-C001", body["33815"][0].ID)
}

func TestRoutesEndpoint_MissingZips(t *testing.T) {
	setTestConfig(t)
	router := newRouter(newTestEnv(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "zips query parameter is required")
}
