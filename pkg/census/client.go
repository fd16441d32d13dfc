// Package census fetches ACS 5-year demographics by ZIP Code Tabulation
// Area, enriching routes whose EDDM attributes are missing income or age.
package census

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/eddm-planner/internal/model"
)

const (
	defaultBaseURL = "https://api.census.gov/data"
	defaultDataset = "2023/acs/acs5"

	incomeVariable = "B19013_001E" // median household income
	ageVariable    = "B01002_001E" // median age
)

// The ACS publishes large negative sentinels for suppressed estimates.
const suppressedBelow = -1_000_000.0

// Client queries the ACS API.
type Client struct {
	baseURL    string
	dataset    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the ACS endpoint; tests point it at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithDataset selects the ACS vintage, e.g. "2023/acs/acs5".
func WithDataset(d string) Option {
	return func(c *Client) { c.dataset = strings.Trim(d, "/") }
}

// WithAPIKey sets the Census API key. Keyless requests work at low volume.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
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

// NewClient creates an ACS client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		dataset:    defaultDataset,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Demographics fetches median income and age for the given ZCTAs in one
// request. ZCTAs absent from the response are absent from the map;
// suppressed estimates come back with nil fields.
func (c *Client) Demographics(ctx context.Context, zctas []string) (map[string]model.Demographics, error) {
	if len(zctas) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limit")
	}

	params := url.Values{
		"get": {incomeVariable + "," + ageVariable},
		"for": {"zip code tabulation area:" + strings.Join(zctas, ",")},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := c.baseURL + "/" + c.dataset + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "census: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "census: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("census: acs returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "census: read body")
	}

	// The ACS answers with a JSON table: a header row then data rows.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, eris.Wrap(err, "census: parse response")
	}
	if len(rows) < 1 {
		return nil, eris.New("census: empty response table")
	}

	header := rows[0]
	incomeIdx, ageIdx, zctaIdx := -1, -1, -1
	for i, h := range header {
		switch h {
		case incomeVariable:
			incomeIdx = i
		case ageVariable:
			ageIdx = i
		case "zip code tabulation area":
			zctaIdx = i
		}
	}
	if incomeIdx < 0 || ageIdx < 0 || zctaIdx < 0 {
		return nil, eris.Errorf("census: unexpected header %v", header)
	}

	out := make(map[string]model.Demographics, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= zctaIdx {
			continue
		}
		out[row[zctaIdx]] = model.Demographics{
			AverageIncome: parseEstimate(row[incomeIdx]),
			MedianAge:     parseEstimate(row[ageIdx]),
		}
	}
	return out, nil
}

// parseEstimate converts an ACS cell to a value, mapping suppression
// sentinels and unparseable cells to nil.
func parseEstimate(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < suppressedBelow {
		return nil
	}
	return &v
}
