// Package geocode resolves street addresses to coordinates via the Census
// Geocoder's one-line endpoint. Campaign planning starts from a business
// address; the matched point becomes the center of the radius region.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/eddm-planner/internal/model"
)

const (
	defaultBaseURL   = "https://geocoding.geo.census.gov/geocoder"
	defaultBenchmark = "Public_AR_Current"
)

// Result holds the geocoding output for an address.
type Result struct {
	Location       model.LatLng
	MatchedAddress string
	ZIPCode        string
	Matched        bool
}

// Client geocodes addresses against the Census Geocoder.
type Client struct {
	baseURL    string
	benchmark  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the Census endpoint; tests point it at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithBenchmark selects the Census benchmark dataset.
func WithBenchmark(b string) Option {
	return func(c *Client) { c.benchmark = b }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// NewClient creates a geocoding client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		benchmark:  defaultBenchmark,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(50, 50), // Census default: 50 req/s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// oneLineResponse is the JSON response from the one-line address API.
type oneLineResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"` // longitude
				Y float64 `json:"y"` // latitude
			} `json:"coordinates"`
			MatchedAddress    string `json:"matchedAddress"`
			AddressComponents struct {
				ZIP string `json:"zip"`
			} `json:"addressComponents"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Geocode resolves a free-form one-line address. An unmatched address is
// not an error; check Result.Matched.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, eris.New("geocode: empty address")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"address":   {address},
		"benchmark": {c.benchmark},
		"format":    {"json"},
	}
	reqURL := c.baseURL + "/locations/onelineaddress?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: census returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var parsed oneLineResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if len(parsed.Result.AddressMatches) == 0 {
		return &Result{Matched: false}, nil
	}

	match := parsed.Result.AddressMatches[0]
	return &Result{
		Location:       model.LatLng{Lat: match.Coordinates.Y, Lng: match.Coordinates.X},
		MatchedAddress: match.MatchedAddress,
		ZIPCode:        match.AddressComponents.ZIP,
		Matched:        true,
	}, nil
}
