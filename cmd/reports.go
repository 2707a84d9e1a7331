package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/arvowealth/portfolio/renderer"
	"github.com/google/subcommands"
)

// printJSON prints v as indented JSON.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// --- Holding Command ---

type holdingCmd struct {
	date string
	json bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the positions and their valuation" }
func (*holdingCmd) Usage() string {
	return `arvo holding [-d <date>] [-json]

  Displays the open positions on a given date with their average cost. Today,
  positions are valued at the latest quotes, other days at their average cost.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the holding report.")
	f.BoolVar(&c.json, "json", false, "Print the positions as JSON.")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report := renderer.NewHolding(on, a.valuate(ctx, l, on))
	if c.json {
		return printJSON(report)
	}
	printMarkdown(renderer.RenderHolding(report))
	return subcommands.ExitSuccess
}

// --- Allocation Command ---

type allocationCmd struct {
	json bool
}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "display the allocation per asset class" }
func (*allocationCmd) Usage() string {
	return `arvo allocation [-json]

  Displays the invested and current value of each asset class, and its share
  of the portfolio, valued at the latest quotes.
`
}

func (c *allocationCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the allocation as JSON.")
}

func (c *allocationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	enriched := a.valuate(ctx, l, date.Today())
	allocations := portfolio.Allocate(enriched)
	if c.json {
		return printJSON(allocations)
	}
	printMarkdown(renderer.AllocationMarkdown(allocations, portfolio.Summarize(enriched)))
	return subcommands.ExitSuccess
}

// --- Tax Command ---

type taxCmd struct {
	year   int
	method string
	json   bool
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "compute the monthly capital gains tax" }
func (*taxCmd) Usage() string {
	return `arvo tax [-y <year>] [-method realized|flat-margin] [-json]

  Computes, for every month and asset class with sales, the sales total, the
  realized profit and the tax due. Equity sales up to the exemption threshold
  in a month are exempt.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Only report this year.")
	f.StringVar(&c.method, "method", "", "Realized profit method, overrides the configuration.")
	f.BoolVar(&c.json, "json", false, "Print the monthly reports as JSON.")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	policy, err := a.cfg.TaxPolicy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in tax configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.method != "" {
		if policy.Method, err = portfolio.ParseProfitMethod(c.method); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	reports := portfolio.ComputeTaxReportsWithPolicy(l, policy)
	if c.year != 0 {
		reports = slices.DeleteFunc(reports, func(r portfolio.TaxReport) bool { return r.Year != c.year })
	}
	if c.json {
		return printJSON(reports)
	}
	printMarkdown(renderer.RenderTax(renderer.NewTax(reports, policy)))
	return subcommands.ExitSuccess
}

// --- Returns Command ---

type returnsCmd struct {
	years      string
	benchmarks string
	chart      string
	json       bool
}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "display the monthly returns and compare them to benchmarks" }
func (*returnsCmd) Usage() string {
	return `arvo returns [-y <year,...>] [-b <benchmark,...>] [-chart <file.png>] [-json]

  Displays the money weighted return of every month, the compounded return of
  each year, and compares the cumulative return to benchmarks.
`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.years, "y", "", "Comma separated years, defaults to the configuration or the last two years.")
	f.StringVar(&c.benchmarks, "b", "CDI,IBOVESPA", "Comma separated benchmarks to compare to, none when empty.")
	f.StringVar(&c.chart, "chart", "", "Write a PNG chart of the cumulative returns to this file.")
	f.BoolVar(&c.json, "json", false, "Print the returns as JSON.")
}

// parseYears parses a comma separated list of years.
func parseYears(s string) ([]int, error) {
	var years []int
	for _, field := range splitList(s) {
		y, err := strconv.Atoi(field)
		if err != nil || y < 1900 || y > 9999 {
			return nil, fmt.Errorf("invalid year %q", field)
		}
		years = append(years, y)
	}
	return years, nil
}

// splitList splits a comma separated list, ignoring empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// returns computes the monthly returns and the comparison to benchmarks.
func (a *app) returns(ctx context.Context, l *portfolio.Ledger, years []int, labels []string) ([]portfolio.MonthlyReturn, []portfolio.Benchmark, []portfolio.Comparison) {
	if len(years) == 0 {
		years = a.cfg.Returns.Years
	}
	today := date.Today()
	returns := portfolio.ComputeMonthlyReturns(l, a.valuate(ctx, l, today), portfolio.ReturnsConfig{On: today, Years: years})

	var benchmarks []portfolio.Benchmark
	fetcher := a.benchmarks(ctx)
	for _, label := range labels {
		b, err := fetcher.FetchBenchmark(ctx, label)
		if err != nil {
			a.logger.Warn().Err(err).Str("benchmark", label).Msg("benchmark skipped")
			continue
		}
		benchmarks = append(benchmarks, b)
	}
	cumulative := portfolio.CumulativeReturn(portfolio.Flatten(returns))
	return returns, benchmarks, portfolio.Compare(cumulative, benchmarks)
}

func (c *returnsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	years, err := parseYears(c.years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	returns, benchmarks, comparisons := a.returns(ctx, l, years, splitList(c.benchmarks))
	if c.chart != "" {
		png, err := renderer.ReturnsChart(returns, benchmarks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.chart, png, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.json {
		return printJSON(struct {
			Returns     []portfolio.MonthlyReturn `json:"returns"`
			Comparisons []portfolio.Comparison    `json:"comparisons"`
		}{returns, comparisons})
	}
	printMarkdown(renderer.ReturnsMarkdown(returns, comparisons))
	return subcommands.ExitSuccess
}

// --- Rebalance Command ---

type rebalanceCmd struct {
	targets string
	band    float64
	json    bool
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "suggest operations to reach target weights" }
func (*rebalanceCmd) Usage() string {
	return `arvo rebalance [-target <TICKER=percent,...>] [-band <points>] [-json]

  Compares the share of each position to its target and suggests the amount to
  buy or sell. Without targets every position targets an equal weight.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.targets, "target", "", "Target weights, e.g. PETR4=40,VALE3=60.")
	f.Float64Var(&c.band, "band", float64(portfolio.DefaultBand), "Tolerance band in percentage points.")
	f.BoolVar(&c.json, "json", false, "Print the suggestions as JSON.")
}

// parseTargets parses TICKER=percent pairs. An empty string means no targets.
func parseTargets(s string) (map[string]portfolio.Percent, error) {
	items := splitList(s)
	if len(items) == 0 {
		return nil, nil
	}
	targets := make(map[string]portfolio.Percent, len(items))
	for _, item := range items {
		ticker, weight, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid target %q, want TICKER=percent", item)
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(weight), "%"), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid weight in %q", item)
		}
		targets[strings.ToUpper(strings.TrimSpace(ticker))] = portfolio.Percent(v)
	}
	return targets, nil
}

func (c *rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	targets, err := parseTargets(c.targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	band := portfolio.Percent(c.band)
	if band <= 0 {
		band = portfolio.DefaultBand
	}
	suggestions := portfolio.Rebalance(a.valuate(ctx, l, date.Today()), targets, band)
	if c.json {
		return printJSON(suggestions)
	}
	printMarkdown(renderer.RebalanceMarkdown(suggestions, band))
	return subcommands.ExitSuccess
}
