// Package quote provides quote and benchmark sources for the portfolio
// engine.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/arvowealth/portfolio"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// HTTP fetches quotes from a JSON endpoint, one request per ticker.
type HTTP struct {
	url        string // URL template, "{ticker}" is replaced by the ticker.
	path       string // JSONPath of the price.
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Option configures the client
type Option func(*HTTP)

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) Option {
	return func(h *HTTP) {
		if requestsPerSecond > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		h.httpClient.Timeout = timeout
	}
}

// WithCache caches responses in dir for the day. An empty dir disables the
// cache.
func WithCache(dir string) Option {
	return func(h *HTTP) {
		if dir == "" {
			return
		}
		base := h.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		h.httpClient.Transport = &diskCache{base: base, dir: dir, logger: h.logger}
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(h *HTTP) {
		h.logger = logger
	}
}

// NewHTTP creates a client for the endpoint urlTemplate, extracting the price
// at path from each response. Options are applied in order, WithLogger must
// come before WithCache for the cache to use it.
func NewHTTP(urlTemplate, path string, opts ...Option) *HTTP {
	h := &HTTP{
		url:        urlTemplate,
		path:       path,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchQuotes fetches the quote of each ticker. Failing tickers are missing
// from the result and reported in the joined error.
func (h *HTTP) FetchQuotes(ctx context.Context, tickers []string) (portfolio.Quotes, error) {
	quotes := make(portfolio.Quotes, len(tickers))
	var errs error
	for _, ticker := range tickers {
		v, err := h.fetch(ctx, ticker)
		if err != nil {
			h.logger.Warn().Err(err).Str("ticker", ticker).Msg("quote unavailable")
			errs = errors.Join(errs, fmt.Errorf("%s: %w", ticker, err))
			if ctx.Err() != nil {
				return quotes, errs
			}
			continue
		}
		quotes[ticker] = v
	}
	return quotes, errs
}

func (h *HTTP) fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("rate limit wait: %w", err)
	}
	addr := strings.ReplaceAll(h.url, "{ticker}", url.PathEscape(ticker))

	var jobj any
	if err := h.jwget(ctx, addr, &jobj); err != nil {
		return decimal.Zero, err
	}
	jval, err := jsonpath.Get(h.path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %w", h.path, err)
	}
	// jsonpath returns either a single answer or a list of answers: keep the
	// first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	v, err := parsePrice(jval)
	if err != nil {
		return decimal.Zero, err
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("empty price %v", v)
	}
	return v, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// data.
func (h *HTTP) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parsePrice reads a price that some APIs return as a number and others as a
// string, possibly with a decimal comma.
func parsePrice(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("value is an invalid string %q: %w", v, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("value is neither a number nor a string: %v", jval)
	}
}
