package eddm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAll(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()

		if r.URL.Query().Get("ZIP") == "99999" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, routesPayload)
	}))
	defer srv.Close()

	zips := []string{"33815", "99999", "33803"}
	results := FetchAll(context.Background(), newTestClient(srv), zips, 2)
	require.Len(t, results, 3)

	// Results hold input order, and the failed ZIP does not sink the rest.
	assert.Equal(t, "33815", results[0].ZIP)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Routes, 2)

	assert.Equal(t, "99999", results[1].ZIP)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "33803", results[2].ZIP)
	require.NoError(t, results[2].Err)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}

func TestFetchAll_Empty(t *testing.T) {
	results := FetchAll(context.Background(), NewClient(), nil, 4)
	assert.Empty(t, results)
}
