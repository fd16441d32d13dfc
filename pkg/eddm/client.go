// Package eddm fetches carrier-route data from the USPS EDDM mapping API.
// The API is an ArcGIS GPServer; responses arrive as feature collections
// with route attributes and polygon rings in lat/lng.
package eddm

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/eddm-planner/internal/model"
)

const defaultBaseURL = "https://gis.usps.com/arcgis/rest/services/EDDM/selectZIP/GPServer"

// Client talks to the USPS EDDM GPServer.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the USPS endpoint; tests point it at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit for USPS calls.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxRetries sets how many attempts a request gets before giving up.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the base delay of the exponential retry backoff.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoffBase = d
		}
	}
}

// NewClient creates a USPS EDDM client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(2, 2),
		maxRetries:  3,
		backoffBase: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// gpResponse is the ArcGIS GPServer execute envelope.
type gpResponse struct {
	Results []struct {
		Value struct {
			Features []gpFeature `json:"features"`
		} `json:"value"`
	} `json:"results"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type gpFeature struct {
	Attributes struct {
		CRID      string  `json:"CRID_ID"`
		ZIP       string  `json:"ZIP_CODE"`
		ResCount  int     `json:"RES_CNT"`
		BusCount  int     `json:"BUS_CNT"`
		AvgIncome float64 `json:"AVG_HH_INC"`
		AvgAge    float64 `json:"AVG_AGE"`
	} `json:"attributes"`
	Geometry struct {
		Rings [][][]float64 `json:"rings"`
	} `json:"geometry"`
}

// RoutesByZIP fetches every carrier route serving one ZIP code.
func (c *Client) RoutesByZIP(ctx context.Context, zip string) ([]model.Route, error) {
	params := url.Values{
		"f":       {"json"},
		"ZIP":     {zip},
		"Rte_Box": {"R"},
	}
	reqURL := c.baseURL + "/routes/execute?" + params.Encode()

	var resp gpResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, eris.Wrapf(err, "eddm: fetch routes for %s", zip)
	}
	if resp.Error != nil {
		return nil, eris.Errorf("eddm: api error %d for %s: %s", resp.Error.Code, zip, resp.Error.Message)
	}

	var routes []model.Route
	for _, result := range resp.Results {
		for _, f := range result.Value.Features {
			routes = append(routes, featureToRoute(zip, f))
		}
	}
	zap.L().Debug("eddm: fetched routes", zap.String("zip", zip), zap.Int("count", len(routes)))
	return routes, nil
}

// ZIPsNear returns the distinct ZIP codes whose routes fall within the
// given radius of a point, nearest first.
func (c *Client) ZIPsNear(ctx context.Context, lat, lng, radiusMiles float64) ([]string, error) {
	params := url.Values{
		"f":        {"json"},
		"Lat":      {formatFloat(lat)},
		"Long":     {formatFloat(lng)},
		"Distance": {formatFloat(radiusMiles)},
	}
	// selectNear is a sibling GPServer of selectZIP.
	reqURL := strings.Replace(c.baseURL, "selectZIP", "selectNear", 1) + "/routes/execute?" + params.Encode()

	var resp gpResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, eris.Wrap(err, "eddm: fetch nearby ZIPs")
	}
	if resp.Error != nil {
		return nil, eris.Errorf("eddm: api error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	seen := make(map[string]bool)
	var zips []string
	for _, result := range resp.Results {
		for _, f := range result.Value.Features {
			z := f.Attributes.ZIP
			if z == "" || seen[z] {
				continue
			}
			seen[z] = true
			zips = append(zips, z)
		}
	}
	return zips, nil
}

func featureToRoute(zip string, f gpFeature) model.Route {
	rings := make([][]model.LatLng, 0, len(f.Geometry.Rings))
	for _, raw := range f.Geometry.Rings {
		ring := make([]model.LatLng, 0, len(raw))
		for _, pt := range raw {
			if len(pt) < 2 {
				continue
			}
			ring = append(ring, model.LatLng{Lat: pt[1], Lng: pt[0]})
		}
		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}

	var demo *model.Demographics
	if f.Attributes.AvgIncome > 0 || f.Attributes.AvgAge > 0 {
		demo = &model.Demographics{}
		if f.Attributes.AvgIncome > 0 {
			v := f.Attributes.AvgIncome
			demo.AverageIncome = &v
		}
		if f.Attributes.AvgAge > 0 {
			v := f.Attributes.AvgAge
			demo.MedianAge = &v
		}
	}

	id := zip + "-" + f.Attributes.CRID
	return model.NewRoute(id, zip, rings, f.Attributes.ResCount, f.Attributes.BusCount, demo)
}

// getJSON performs a rate-limited GET with retries on 429, 5xx, and
// transport errors.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	var lastErr error
	for attempt := range c.maxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("eddm: request failed, retrying",
				zap.String("url", reqURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, reqURL)
			zap.L().Warn("eddm: retryable status",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return eris.Errorf("unexpected status %d from %s", resp.StatusCode, reqURL)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return eris.Wrap(err, "read body")
		}
		return eris.Wrap(json.Unmarshal(body, out), "parse response")
	}
	return eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := c.backoffBase
	maxBackoff := 10 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
