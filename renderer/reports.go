package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arvowealth/portfolio"
)

// LogMarkdown renders operations as a table, in the given order.
func LogMarkdown(ops []portfolio.Operation) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Operations\n\n")
	if len(ops) == 0 {
		fmt.Fprintln(&b, "No operation.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Kind | Ticker | Quantity | Price | Costs | Total | Broker | ID |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|:---|:---|")
	for _, op := range ops {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			op.Date,
			op.Kind,
			op.Ticker,
			op.Quantity,
			op.Price,
			op.Costs,
			op.Notional(),
			op.Broker,
			shortID(op.ID),
		)
	}
	return b.String()
}

// shortID keeps the first block of uuids, enough to address an operation.
func shortID(id string) string {
	if len(id) == 36 && id[8] == '-' {
		return id[:8]
	}
	return id
}

// AllocationMarkdown renders the allocation per asset class and the totals.
func AllocationMarkdown(allocations []portfolio.Allocation, total portfolio.Summary) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Allocation\n\n")
	fmt.Fprintln(&b, "| Class | Invested | Current | P/L | P/L % | Share |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	for _, a := range allocations {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			a.AssetClass.Title(),
			a.Invested,
			a.Current,
			a.PL.SignedString(),
			a.PLPercent.SignedString(),
			a.Share,
		)
	}
	fmt.Fprintf(&b, "| **%s** | **%s** | **%s** | **%s** | **%s** | |\n",
		"Total",
		total.Invested,
		total.Current,
		total.PL.SignedString(),
		total.PLPercent.SignedString(),
	)
	return b.String()
}

// ReturnsMarkdown renders monthly returns, one row per year, followed by the
// comparison to benchmarks when there are any.
func ReturnsMarkdown(returns []portfolio.MonthlyReturn, comparisons []portfolio.Comparison) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Monthly Returns\n\n")
	fmt.Fprint(&b, "| Year |")
	for m := time.January; m <= time.December; m++ {
		fmt.Fprintf(&b, " %s |", m.String()[:3])
	}
	fmt.Fprintln(&b, " Total |")
	fmt.Fprintln(&b, "|:---|"+strings.Repeat("---:|", 13))
	for _, r := range returns {
		fmt.Fprintf(&b, "| %d |", r.Year)
		for m := time.January; m <= time.December; m++ {
			if p := r.Month(m); p != nil {
				fmt.Fprintf(&b, " %s |", p.SignedString())
			} else {
				fmt.Fprint(&b, " |")
			}
		}
		fmt.Fprintf(&b, " **%s** |\n", r.Total.SignedString())
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Benchmarks\n\n")
		fmt.Fprintln(w, "| Benchmark | Benchmark Return | Portfolio Return | Alpha |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|")
		for _, c := range comparisons {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", c.Label, c.Benchmark.SignedString(), c.Portfolio.SignedString(), c.Alpha.SignedString())
		}
		return len(comparisons) > 0
	})
	return b.String()
}

// RebalanceMarkdown renders rebalance suggestions.
func RebalanceMarkdown(suggestions []portfolio.Suggestion, band portfolio.Percent) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Rebalance\n\n")
	fmt.Fprintf(&b, "Tolerance band: %s.\n\n", band)
	fmt.Fprintln(&b, "| Ticker | Current | Target | Diff | Action | Amount |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|---:|")
	for _, s := range suggestions {
		amount := "-"
		if s.Action != portfolio.Hold {
			amount = s.Amount.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", s.Ticker, s.Current, s.Target, s.Diff.SignedString(), s.Action, amount)
	}
	return b.String()
}
