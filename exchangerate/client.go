// Package exchangerate fetches exchange rates from a remote JSON API.
//
// The default source is https://api.exchangerate-api.com, that returns rates
// relative to USD:
//
//	{"base":"USD","date":"2025-03-01","time_last_updated":1740787201,
//	 "rates":{"USD":1,"EUR":0.961,"CHF":0.902, ...}}
//
// Any other source returning a JSON object mapping currency codes to rates can
// be used, the object is located with a JSONPath expression.
package exchangerate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/assets"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultURL returns the latest rates relative to USD.
	DefaultURL = "https://api.exchangerate-api.com/v4/latest/USD"
	// DefaultPath locates the code→rate object in DefaultURL's response.
	DefaultPath = "$.rates"
)

// Client is an assets.RateProvider reading rates from a JSON API.
type Client struct {
	url    string
	path   string
	http   *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the address to GET.
func WithURL(url string) Option { return func(c *Client) { c.url = url } }

// WithPath sets the JSONPath expression locating the rates object.
func WithPath(path string) Option { return func(c *Client) { c.path = path } }

// WithHTTPClient sets the http client, e.g. one returned by Daily.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a Client for DefaultURL with a 10s timeout.
func New(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		path:   DefaultPath,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements assets.RateProvider. Errors wrap assets.ErrRateFetchFailed.
func (c *Client) Fetch(ctx context.Context) (assets.RateTable, error) {
	var jobj any
	if err := c.jwget(ctx, &jobj); err != nil {
		return assets.RateTable{}, fmt.Errorf("%w: %w", assets.ErrRateFetchFailed, err)
	}

	jval, err := jsonpath.Get(c.path, jobj)
	if err != nil {
		return assets.RateTable{}, fmt.Errorf("%w: error parsing %q: %w", assets.ErrRateFetchFailed, c.path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	jrates, ok := jval.(map[string]any)
	if !ok {
		return assets.RateTable{}, fmt.Errorf("%w: %q is not an object: %v", assets.ErrRateFetchFailed, c.path, jval)
	}

	rates := make(map[string]decimal.Decimal, len(jrates))
	for code, v := range jrates {
		n, ok := v.(json.Number)
		if !ok {
			return assets.RateTable{}, fmt.Errorf("%w: rate %q is not a number: %v", assets.ErrRateFetchFailed, code, v)
		}
		r, err := decimal.NewFromString(n.String())
		if err != nil {
			return assets.RateTable{}, fmt.Errorf("%w: rate %q: %w", assets.ErrRateFetchFailed, code, err)
		}
		rates[code] = r
	}

	t, err := assets.NewRateTable(rates, assets.SourceRemote, c.now())
	if err != nil {
		return assets.RateTable{}, fmt.Errorf("%w: %w", assets.ErrRateFetchFailed, err)
	}
	c.logger.Debug("exchange rates fetched", zap.String("url", c.url), zap.Int("currencies", t.Len()))
	return t, nil
}

// jwget performs an HTTP GET request and decodes the JSON response into data.
// Numbers are kept as json.Number to avoid float rounding.
func (c *Client) jwget(ctx context.Context, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}
