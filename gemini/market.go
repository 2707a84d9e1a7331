package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/shopspring/decimal"
)

type quote struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
}

// FetchQuotes asks for the latest price of tickers, searching the web.
// Tickers missing from the answer, or quoted at zero, are left out.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) (portfolio.Quotes, error) {
	quotes := make(portfolio.Quotes, len(tickers))
	if len(tickers) == 0 {
		return quotes, nil
	}
	prompt := fmt.Sprintf(`Provide the latest closing or last traded prices for the B3 tickers: %s.
Answer only with JSON: [{"ticker": "ABCD3", "price": 10.50}]`, strings.Join(tickers, ", "))

	c.logger.Debug().Str("model", c.model).Int("tickers", len(tickers)).Msg("fetching quotes")
	text, err := c.ask(ctx, prompt, true)
	if err != nil {
		return quotes, err
	}
	doc, err := extractJSON(text, '[', ']')
	if err != nil {
		return quotes, err
	}
	var got []quote
	if err := json.Unmarshal([]byte(doc), &got); err != nil {
		return quotes, fmt.Errorf("failed to decode quotes: %w", err)
	}

	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[t] = true
	}
	for _, q := range got {
		ticker := strings.ToUpper(strings.TrimSpace(q.Ticker))
		if !wanted[ticker] || !q.Price.IsPositive() {
			continue
		}
		quotes[ticker] = q.Price
	}
	if len(quotes) < len(tickers) {
		c.logger.Warn().Int("missing", len(tickers)-len(quotes)).Msg("quotes missing from answer")
	}
	return quotes, nil
}

// FetchBenchmark asks for the monthly returns of the index label over the
// last 12 months, searching the web.
func (c *Client) FetchBenchmark(ctx context.Context, label string) (portfolio.Benchmark, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	prompt := fmt.Sprintf(`Return the monthly returns in percent of the %s index over the last 12 months, oldest first.
Answer only with JSON: {"label": %q, "totalReturn": 12.5, "monthlyHistory": [1.0, 0.9]}`, label, label)

	c.logger.Debug().Str("model", c.model).Str("benchmark", label).Msg("fetching benchmark")
	text, err := c.ask(ctx, prompt, true)
	if err != nil {
		return portfolio.Benchmark{}, err
	}
	doc, err := extractJSON(text, '{', '}')
	if err != nil {
		return portfolio.Benchmark{}, err
	}
	var b portfolio.Benchmark
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		return portfolio.Benchmark{}, fmt.Errorf("failed to decode benchmark %s: %w", label, err)
	}
	if len(b.MonthlyHistory) == 0 && b.TotalReturn == 0 {
		return portfolio.Benchmark{}, errors.New("empty benchmark " + label)
	}
	b.Label = label
	return b, nil
}

var (
	_ portfolio.QuoteFetcher     = (*Client)(nil)
	_ portfolio.BenchmarkFetcher = (*Client)(nil)
)
