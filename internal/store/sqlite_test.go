package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eddm-planner/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRoute(id, zip string, res, bus int) model.Route {
	income := 72500.0
	return model.NewRoute(id, zip, [][]model.LatLng{{
		{Lat: 28.03, Lng: -81.96},
		{Lat: 28.03, Lng: -81.94},
		{Lat: 28.05, Lng: -81.94},
		{Lat: 28.05, Lng: -81.96},
	}}, res, bus, &model.Demographics{AverageIncome: &income})
}

func TestSQLite_RouteBatch_PutAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := []model.Route{
		testRoute("33815-C002", "33815", 0, 120),
		testRoute("33815-C001", "33815", 450, 32),
	}
	require.NoError(t, st.PutRouteBatch(ctx, "33815", in, time.Hour))

	got, hit, err := st.GetRouteBatch(ctx, "33815")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 2)

	// Routes come back ordered by ID with geometry, counts, and
	// demographics intact.
	assert.Equal(t, "33815-C001", got[0].ID)
	assert.Equal(t, 450, got[0].ResidentialCount)
	assert.Equal(t, 32, got[0].BusinessCount)
	require.NotNil(t, got[0].Demographics)
	require.NotNil(t, got[0].Demographics.AverageIncome)
	assert.InDelta(t, 72500.0, *got[0].Demographics.AverageIncome, 1e-9)
	assert.Nil(t, got[0].Demographics.MedianAge)
	assert.Equal(t, in[0].Coordinates, got[1].Coordinates)
	assert.InDelta(t, in[0].Centroid.Lat, got[1].Centroid.Lat, 1e-9)
}

func TestSQLite_RouteBatch_Miss(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, hit, err := st.GetRouteBatch(context.Background(), "99999")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestSQLite_RouteBatch_EmptyBatchIsAHit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutRouteBatch(ctx, "00501", nil, time.Hour))

	got, hit, err := st.GetRouteBatch(ctx, "00501")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)
}

func TestSQLite_RouteBatch_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutRouteBatch(ctx, "33815",
		[]model.Route{testRoute("33815-C001", "33815", 450, 32)}, -time.Hour))

	_, hit, err := st.GetRouteBatch(ctx, "33815")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSQLite_RouteBatch_Replace(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutRouteBatch(ctx, "33815",
		[]model.Route{testRoute("33815-C001", "33815", 450, 32)}, time.Hour))
	require.NoError(t, st.PutRouteBatch(ctx, "33815",
		[]model.Route{testRoute("33815-C009", "33815", 275, 0)}, time.Hour))

	got, hit, err := st.GetRouteBatch(ctx, "33815")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "33815-C009", got[0].ID)
}

func TestSQLite_Demographics_PutAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	income, age := 65000.0, 41.5
	require.NoError(t, st.PutDemographics(ctx, "33815",
		model.Demographics{AverageIncome: &income, MedianAge: &age}, time.Hour))

	got, hit, err := st.GetDemographics(ctx, "33815")
	require.NoError(t, err)
	require.True(t, hit)
	require.NotNil(t, got.AverageIncome)
	assert.InDelta(t, 65000.0, *got.AverageIncome, 1e-9)
	require.NotNil(t, got.MedianAge)
	assert.InDelta(t, 41.5, *got.MedianAge, 1e-9)
}

func TestSQLite_Demographics_Miss(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, hit, err := st.GetDemographics(context.Background(), "00000")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestSQLite_Demographics_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, second := 50000.0, 61000.0
	require.NoError(t, st.PutDemographics(ctx, "33815",
		model.Demographics{AverageIncome: &first}, time.Hour))
	require.NoError(t, st.PutDemographics(ctx, "33815",
		model.Demographics{AverageIncome: &second}, time.Hour))

	got, hit, err := st.GetDemographics(ctx, "33815")
	require.NoError(t, err)
	require.True(t, hit)
	assert.InDelta(t, 61000.0, *got.AverageIncome, 1e-9)
}

func TestSQLite_DeleteExpired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	income := 50000.0
	require.NoError(t, st.PutRouteBatch(ctx, "33815",
		[]model.Route{testRoute("33815-C001", "33815", 450, 32)}, -time.Hour))
	require.NoError(t, st.PutRouteBatch(ctx, "33803", nil, time.Hour))
	require.NoError(t, st.PutDemographics(ctx, "33815",
		model.Demographics{AverageIncome: &income}, -time.Hour))

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// The live batch survives.
	_, hit, err := st.GetRouteBatch(ctx, "33803")
	require.NoError(t, err)
	assert.True(t, hit)
}
