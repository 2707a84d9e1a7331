package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/arvowealth/portfolio/renderer"
	"github.com/google/subcommands"
)

// errNoGemini is printed by commands that only Gemini can serve.
const errNoGemini = "Error: this command requires a Gemini API key ([gemini] api_key or GEMINI_API_KEY)"

type treasuryCmd struct {
	json bool
}

func (*treasuryCmd) Name() string     { return "treasury" }
func (*treasuryCmd) Synopsis() string { return "display the current Tesouro Direto rates and prices" }
func (*treasuryCmd) Usage() string {
	return `arvo treasury [-json]

  Looks up the Tesouro Direto titles on offer, with their rate, minimum
  investment and unit price. Requires a Gemini API key.
`
}

func (c *treasuryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the titles as JSON.")
}

func (c *treasuryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	g := a.gemini(ctx)
	if g == nil {
		fmt.Fprintln(os.Stderr, errNoGemini)
		return subcommands.ExitFailure
	}
	bonds, err := g.FetchTreasuryRates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching treasury rates: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(bonds)
	}
	printMarkdown(renderer.TreasuryMarkdown(bonds))
	return subcommands.ExitSuccess
}

type marketCmd struct {
	json bool
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "display today's indices and top movers of the B3" }
func (*marketCmd) Usage() string {
	return `arvo market [-json]

  Looks up IBOV, IFIX, USD/BRL and S&P500, and the top 5 gainers and losers
  among stocks and real estate funds. Requires a Gemini API key.
`
}

func (c *marketCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the overview as JSON.")
}

func (c *marketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	g := a.gemini(ctx)
	if g == nil {
		fmt.Fprintln(os.Stderr, errNoGemini)
		return subcommands.ExitFailure
	}
	overview, err := g.FetchMarketOverview(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching market overview: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(overview)
	}
	printMarkdown(renderer.MarketMarkdown(overview))
	return subcommands.ExitSuccess
}
