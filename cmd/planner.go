package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/pricing"
	"github.com/sells-group/eddm-planner/internal/roi"
	"github.com/sells-group/eddm-planner/internal/store"
	"github.com/sells-group/eddm-planner/pkg/census"
	"github.com/sells-group/eddm-planner/pkg/eddm"
	"github.com/sells-group/eddm-planner/pkg/geocode"
)

// plannerEnv bundles the collaborators a planning command needs: the cache
// store, the upstream clients, and the loaded pricing and ROI reference data.
type plannerEnv struct {
	store    store.Store
	eddm     *eddm.Client
	geocoder *geocode.Client
	acs      *census.Client
	tables   map[string]pricing.Table
	profiles map[string]roi.IndustryProfile
}

// initPlanner validates config for the given mode, opens and migrates the
// cache store, and builds the upstream clients.
func initPlanner(ctx context.Context, mode string) (*plannerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	if n, err := st.DeleteExpired(ctx); err != nil {
		zap.L().Warn("cache purge failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("purged expired cache entries", zap.Int("entries", n))
	}

	tables, err := pricing.LoadTables(cfg.Pricing.TablesPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	profiles, err := roi.Profiles(cfg.ROI.ProfilesPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &plannerEnv{
		store: st,
		eddm: eddm.NewClient(
			eddm.WithBaseURL(cfg.EDDM.BaseURL),
			eddm.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.EDDM.TimeoutSecs) * time.Second}),
			eddm.WithRateLimit(cfg.EDDM.RatePerSec),
			eddm.WithMaxRetries(cfg.EDDM.MaxRetries),
			eddm.WithRetryBackoff(time.Duration(cfg.EDDM.RetryBackoff)*time.Millisecond),
		),
		geocoder: geocode.NewClient(
			geocode.WithBaseURL(cfg.Geocode.BaseURL),
			geocode.WithBenchmark(cfg.Geocode.Benchmark),
			geocode.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Geocode.TimeoutSecs) * time.Second}),
		),
		acs: census.NewClient(
			census.WithBaseURL(cfg.Census.BaseURL),
			census.WithDataset(cfg.Census.Dataset),
			census.WithAPIKey(cfg.Census.APIKey),
			census.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Census.TimeoutSecs) * time.Second}),
		),
		tables:   tables,
		profiles: profiles,
	}, nil
}

func (e *plannerEnv) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func (e *plannerEnv) cacheTTL() time.Duration {
	return time.Duration(cfg.Store.TTLHours) * time.Hour
}

// table resolves a product's tier table.
func (e *plannerEnv) table(product string) (pricing.Table, error) {
	t, ok := e.tables[product]
	if !ok {
		return pricing.Table{}, errUnknownProduct(product, e.tables)
	}
	return t, nil
}

func errUnknownProduct(product string, tables map[string]pricing.Table) error {
	return eris.Errorf("unknown product %q (have: %s)", product, productList(tables))
}

// profile resolves an industry profile.
func (e *plannerEnv) profile(industry string) (roi.IndustryProfile, error) {
	p, ok := e.profiles[industry]
	if !ok {
		return roi.IndustryProfile{}, eris.Errorf("unknown industry %q (have: %v)", industry, roi.ProfileIDs(e.profiles))
	}
	return p, nil
}

// fetchRoutes returns routes for each ZIP, serving from the cache where
// possible and fanning out to the USPS API for the rest. Failed ZIPs are
// logged and omitted; only an all-ZIP failure is an error.
func (e *plannerEnv) fetchRoutes(ctx context.Context, zips []string) (map[string][]model.Route, error) {
	out := make(map[string][]model.Route, len(zips))

	var misses []string
	for _, zip := range zips {
		routes, hit, err := e.store.GetRouteBatch(ctx, zip)
		if err != nil {
			return nil, eris.Wrapf(err, "route cache read for %s", zip)
		}
		if hit {
			out[zip] = routes
			continue
		}
		misses = append(misses, zip)
	}
	zap.L().Info("route lookup",
		zap.Int("zips", len(zips)),
		zap.Int("cached", len(out)),
		zap.Int("fetching", len(misses)),
	)

	for _, res := range eddm.FetchAll(ctx, e.eddm, misses, cfg.EDDM.Concurrency) {
		if res.Err != nil {
			continue // FetchAll already logged it
		}
		if err := e.store.PutRouteBatch(ctx, res.ZIP, res.Routes, e.cacheTTL()); err != nil {
			zap.L().Warn("route cache write failed", zap.String("zip", res.ZIP), zap.Error(err))
		}
		out[res.ZIP] = res.Routes
	}

	if len(out) == 0 && len(zips) > 0 {
		return nil, eris.Errorf("no routes could be fetched for any of %d ZIPs", len(zips))
	}

	e.enrichDemographics(ctx, out)
	return out, nil
}

// enrichDemographics fills missing route demographics from the ACS, treating
// each route's ZIP as its ZCTA. Enrichment is best-effort: ACS failures leave
// demographics absent.
func (e *plannerEnv) enrichDemographics(ctx context.Context, routesByZIP map[string][]model.Route) {
	needed := make(map[string]bool)
	for zip, routes := range routesByZIP {
		for _, r := range routes {
			if r.Demographics == nil {
				needed[zip] = true
				break
			}
		}
	}
	if len(needed) == 0 {
		return
	}

	demos := make(map[string]model.Demographics, len(needed))
	var misses []string
	for zcta := range needed {
		demo, hit, err := e.store.GetDemographics(ctx, zcta)
		if err != nil {
			zap.L().Warn("demographics cache read failed", zap.String("zcta", zcta), zap.Error(err))
			continue
		}
		if hit && demo != nil {
			demos[zcta] = *demo
			continue
		}
		if !hit {
			misses = append(misses, zcta)
		}
	}

	if len(misses) > 0 && e.acs != nil {
		fetched, err := e.acs.Demographics(ctx, misses)
		if err != nil {
			zap.L().Warn("acs lookup failed", zap.Int("zctas", len(misses)), zap.Error(err))
		}
		for zcta, demo := range fetched {
			demos[zcta] = demo
			if err := e.store.PutDemographics(ctx, zcta, demo, e.cacheTTL()); err != nil {
				zap.L().Warn("demographics cache write failed", zap.String("zcta", zcta), zap.Error(err))
			}
		}
	}

	for zip, routes := range routesByZIP {
		demo, ok := demos[zip]
		if !ok || (demo.AverageIncome == nil && demo.MedianAge == nil) {
			continue
		}
		for i := range routes {
			if routes[i].Demographics == nil {
				d := demo
				routes[i].Demographics = &d
			}
		}
		routesByZIP[zip] = routes
	}
}

func productList(tables map[string]pricing.Table) string {
	s := ""
	for name := range tables {
		if s != "" {
			s += ", "
		}
		s += name
	}
	return s
}
