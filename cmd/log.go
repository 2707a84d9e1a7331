package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/arvowealth/portfolio/renderer"
	"github.com/google/subcommands"
)

type logCmd struct {
	period string
	start  string
	date   string
	ticker string
	class  string
	head   int
	tail   int
	json   bool
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "list the operations of the ledger" }
func (*logCmd) Usage() string {
	return `arvo log [-p <period> | -s <start_date>] [-d <end_date>] [-t <ticker>] [-class <class>] [-head <n>] [-tail <n>] [-json]

  Lists the operations of the ledger in chronological order, with options for
  filtering and limiting the output. Without date flags the whole ledger is listed.
`
}

func (p *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.period, "p", "", "Predefined period (day, week, month, quarter, year).")
	f.StringVar(&p.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&p.date, "d", "", "The end date for the range.")
	f.StringVar(&p.ticker, "t", "", "Only list operations on this ticker.")
	f.StringVar(&p.class, "class", "", "Only list operations of this asset class.")
	f.IntVar(&p.head, "head", 0, "Show only the first N operations.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N operations.")
	f.BoolVar(&p.json, "json", false, "Print the operations as JSON lines.")
}

// filters converts the flags into ledger filters.
func (p *logCmd) filters() ([]func(portfolio.Operation) bool, error) {
	var filters []func(portfolio.Operation) bool
	if p.ticker != "" {
		filters = append(filters, portfolio.ByTicker(strings.ToUpper(p.ticker)))
	}
	if p.class != "" {
		class, err := portfolio.ParseAssetClass(p.class)
		if err != nil {
			return nil, err
		}
		filters = append(filters, portfolio.ByAssetClass(class))
	}
	if p.start == "" && p.date == "" && p.period == "" {
		return filters, nil
	}

	endDateStr := p.date
	if endDateStr == "" {
		endDateStr = date.Today().String()
	}
	end, err := date.Parse(endDateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	var r date.Range
	switch {
	case p.start != "":
		start, err := date.Parse(p.start)
		if err != nil {
			return nil, fmt.Errorf("parsing start date: %w", err)
		}
		r = date.Range{From: start, To: end}
	case p.period != "":
		period, err := date.ParsePeriod(p.period)
		if err != nil {
			return nil, err
		}
		r = date.NewRange(end, period)
	default:
		r = date.Range{To: end}
	}
	return append(filters, portfolio.Between(r)), nil
}

func (p *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	filters, err := p.filters()
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

	var ops []portfolio.Operation
	for _, op := range portfolio.NewLedger(l.Chronological()...).Operations(filters...) {
		ops = append(ops, op)
	}
	if p.head > 0 && len(ops) > p.head {
		ops = ops[:p.head]
	}
	if p.tail > 0 && len(ops) > p.tail {
		ops = ops[len(ops)-p.tail:]
	}

	if p.json {
		for _, op := range ops {
			if err := portfolio.EncodeOperation(os.Stdout, op); err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding operation: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.LogMarkdown(ops))
	return subcommands.ExitSuccess
}
