package quote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arvowealth/portfolio"
)

// Static serves fixed quotes.
type Static portfolio.Quotes

// FetchQuotes returns the known quotes of tickers.
func (s Static) FetchQuotes(_ context.Context, tickers []string) (portfolio.Quotes, error) {
	quotes := make(portfolio.Quotes, len(tickers))
	for _, ticker := range tickers {
		if v, ok := s[ticker]; ok {
			quotes[ticker] = v
		}
	}
	return quotes, nil
}

// Chain queries fetchers in order, each one only for the tickers still
// missing.
type Chain []portfolio.QuoteFetcher

// FetchQuotes merges the quotes of every fetcher. The error joins the
// fetchers' errors, it is nil when all tickers were found.
func (c Chain) FetchQuotes(ctx context.Context, tickers []string) (portfolio.Quotes, error) {
	quotes := make(portfolio.Quotes, len(tickers))
	var errs error
	missing := slices.Clone(tickers)
	for _, f := range c {
		if len(missing) == 0 {
			break
		}
		got, err := f.FetchQuotes(ctx, missing)
		errs = errors.Join(errs, err)
		for ticker, v := range got {
			if v.IsPositive() {
				quotes[ticker] = v
			}
		}
		missing = slices.DeleteFunc(missing, func(t string) bool {
			_, ok := quotes[t]
			return ok
		})
	}
	if len(missing) == 0 {
		return quotes, nil
	}
	return quotes, errs
}

// ErrUnknownBenchmark is returned for a benchmark without data.
var ErrUnknownBenchmark = errors.New("unknown benchmark")

// StaticBenchmarks serves fixed benchmark series, by upper case label.
type StaticBenchmarks map[string]portfolio.Benchmark

// FallbackBenchmarks returns the reference series used when no benchmark
// source is reachable: 12 months of CDI and IBOVESPA returns.
func FallbackBenchmarks() StaticBenchmarks {
	return StaticBenchmarks{
		"CDI": {
			Label:          "CDI",
			TotalReturn:    11.8,
			MonthlyHistory: []portfolio.Percent{0.95, 0.88, 1.05, 0.92, 0.98, 1.02, 0.89, 0.94, 0.91, 1.07, 1.12, 1.01},
		},
		"IBOVESPA": {
			Label:          "IBOVESPA",
			TotalReturn:    14.2,
			MonthlyHistory: []portfolio.Percent{2.5, -1.2, 3.4, 0.5, -2.1, 4.2, 1.1, -0.8, 2.9, 1.5, 3.8, -1.6},
		},
	}
}

// NewStaticBenchmarks indexes benchmarks by label.
func NewStaticBenchmarks(benchmarks ...portfolio.Benchmark) StaticBenchmarks {
	res := make(StaticBenchmarks, len(benchmarks))
	for _, b := range benchmarks {
		res[strings.ToUpper(b.Label)] = b
	}
	return res
}

// FetchBenchmark returns the benchmark labelled label.
func (s StaticBenchmarks) FetchBenchmark(_ context.Context, label string) (portfolio.Benchmark, error) {
	b, ok := s[strings.ToUpper(label)]
	if !ok {
		return portfolio.Benchmark{}, fmt.Errorf("%w: %q", ErrUnknownBenchmark, label)
	}
	return b, nil
}

// Labels returns the labels of the benchmarks in lexical order.
func (s StaticBenchmarks) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

// BenchmarkChain tries fetchers in order and returns the first success.
type BenchmarkChain []portfolio.BenchmarkFetcher

func (c BenchmarkChain) FetchBenchmark(ctx context.Context, label string) (portfolio.Benchmark, error) {
	var errs error
	for _, f := range c {
		b, err := f.FetchBenchmark(ctx, label)
		if err == nil {
			return b, nil
		}
		errs = errors.Join(errs, err)
	}
	if errs == nil {
		errs = fmt.Errorf("%w: %q", ErrUnknownBenchmark, label)
	}
	return portfolio.Benchmark{}, errs
}

var (
	_ portfolio.QuoteFetcher     = (*HTTP)(nil)
	_ portfolio.QuoteFetcher     = Static(nil)
	_ portfolio.QuoteFetcher     = Chain(nil)
	_ portfolio.BenchmarkFetcher = StaticBenchmarks(nil)
	_ portfolio.BenchmarkFetcher = BenchmarkChain(nil)
)
