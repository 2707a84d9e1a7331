// Package cmd implements the arvo command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/config"
	"github.com/arvowealth/portfolio/date"
	"github.com/arvowealth/portfolio/gemini"
	"github.com/arvowealth/portfolio/quote"
	"github.com/arvowealth/portfolio/store"
	"github.com/google/subcommands"
	"github.com/phuslu/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(newOperationCmd(portfolio.Buy), "operations")
	c.Register(newOperationCmd(portfolio.Sell), "operations")
	c.Register(newOperationCmd(portfolio.Contribution), "operations")
	c.Register(newOperationCmd(portfolio.Redemption), "operations")
	c.Register(&rmCmd{}, "operations")
	c.Register(&importCmd{}, "operations")
	c.Register(&logCmd{}, "operations")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&allocationCmd{}, "reports")
	c.Register(&taxCmd{}, "reports")
	c.Register(&returnsCmd{}, "reports")
	c.Register(&rebalanceCmd{}, "reports")
	c.Register(&publishCmd{}, "reports")

	c.Register(&treasuryCmd{}, "market")
	c.Register(&marketCmd{}, "market")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "arvo.toml", "Path to the TOML configuration file")
var ownerFlag = flag.String("owner", "", "Owner of the ledger, overrides the configuration")

// app holds what the commands share: configuration, logger and ledger store.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.File
	owner  string
}

// openApp loads the configuration and opens the ledger store.
func openApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Logging)
	s, err := store.Open(cfg.Ledger.Dir, logger)
	if err != nil {
		return nil, err
	}
	owner := cfg.Ledger.Owner
	if *ownerFlag != "" {
		owner = *ownerFlag
	}
	return &app{cfg: cfg, logger: logger, store: s, owner: owner}, nil
}

// ledger loads the ledger of the current owner.
func (a *app) ledger(ctx context.Context) (*portfolio.Ledger, error) {
	l, err := a.store.Ledger(ctx, a.owner)
	if err != nil {
		return nil, fmt.Errorf("could not load ledger of %q: %w", a.owner, err)
	}
	return l, nil
}

// gemini returns the Gemini client, or nil when no API key is configured.
func (a *app) gemini(ctx context.Context) *gemini.Client {
	if a.cfg.Gemini.APIKey == "" {
		return nil
	}
	c, err := gemini.New(ctx, a.cfg.Gemini.APIKey, gemini.WithModel(a.cfg.Gemini.Model), gemini.WithLogger(a.logger))
	if err != nil {
		a.logger.Warn().Err(err).Msg("Gemini disabled")
		return nil
	}
	return c
}

// quotes returns the quote sources by priority: the HTTP source, the static
// quotes of the configuration, then Gemini.
func (a *app) quotes(ctx context.Context) portfolio.QuoteFetcher {
	var chain quote.Chain
	q := a.cfg.Quotes
	if q.URL != "" {
		opts := []quote.Option{
			quote.WithRateLimit(q.RateLimit),
			quote.WithTimeout(q.GetTimeout()),
			quote.WithLogger(a.logger),
		}
		if q.Cache != "" {
			opts = append(opts, quote.WithCache(q.Cache))
		}
		chain = append(chain, quote.NewHTTP(q.URL, q.Path, opts...))
	}
	if static := a.cfg.StaticQuotes(); len(static) > 0 {
		chain = append(chain, quote.Static(static))
	}
	if g := a.gemini(ctx); g != nil {
		chain = append(chain, g)
	}
	return chain
}

// benchmarks returns the benchmark sources by priority: the configuration,
// Gemini, then the built-in fallback series.
func (a *app) benchmarks(ctx context.Context) portfolio.BenchmarkFetcher {
	chain := quote.BenchmarkChain{quote.NewStaticBenchmarks(a.cfg.StaticBenchmarks()...)}
	if g := a.gemini(ctx); g != nil {
		chain = append(chain, g)
	}
	return append(chain, quote.FallbackBenchmarks())
}

// valuate computes the positions on day on, valued at the latest quotes when
// on is today, at their average cost otherwise.
func (a *app) valuate(ctx context.Context, l *portfolio.Ledger, on date.Date) []portfolio.EnrichedPosition {
	positions := portfolio.PositionsAsOf(l, on)
	if !on.IsToday() || len(positions) == 0 {
		return portfolio.EnrichPositions(positions, nil)
	}
	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		tickers = append(tickers, p.Ticker)
	}
	quotes, err := a.quotes(ctx).FetchQuotes(ctx, tickers)
	if err != nil {
		a.logger.Warn().Err(err).Int("quoted", len(quotes)).Int("positions", len(positions)).Msg("some quotes are missing")
	}
	return portfolio.EnrichPositions(positions, quotes)
}
