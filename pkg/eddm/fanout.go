package eddm

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/eddm-planner/internal/model"
)

// ZIPResult is the outcome of fetching one ZIP's routes. A failed ZIP
// carries its error so callers can merge the successes and report the
// failures without losing either.
type ZIPResult struct {
	ZIP    string
	Routes []model.Route
	Err    error
}

// FetchAll fetches several ZIPs concurrently, at most concurrency at a
// time. Results come back in input order; per-ZIP failures do not cancel
// the other fetches.
func FetchAll(ctx context.Context, c *Client, zips []string, concurrency int) []ZIPResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]ZIPResult, len(zips))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, zip := range zips {
		g.Go(func() error {
			routes, err := c.RoutesByZIP(ctx, zip)
			if err != nil {
				zap.L().Warn("eddm: zip fetch failed", zap.String("zip", zip), zap.Error(err))
			}
			results[i] = ZIPResult{ZIP: zip, Routes: routes, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
