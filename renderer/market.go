package renderer

import (
	"fmt"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/gemini"
)

// TreasuryMarkdown renders the Tesouro Direto titles on offer.
func TreasuryMarkdown(bonds []gemini.TreasuryBond) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Tesouro Direto\n\n")
	if len(bonds) == 0 {
		fmt.Fprintln(&b, "No title available.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Title | Maturity | Rate | Minimum | Price |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, t := range bonds {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			t.Name,
			t.Maturity,
			t.Rate,
			t.MinAmount,
			portfolio.M(t.Price, portfolio.DefaultCurrency),
		)
	}
	return b.String()
}

// MarketMarkdown renders the indices then the rankings of stocks and real
// estate funds. Empty rankings are skipped.
func MarketMarkdown(m gemini.MarketOverview) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Market\n\n")
	if len(m.Indices) > 0 {
		fmt.Fprintln(&b, "| Index | Value | Change |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, i := range m.Indices {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", i.Label, i.Value, i.Change)
		}
	}
	writeMovers(&b, "Stocks: top gainers", m.Stocks.Gainers)
	writeMovers(&b, "Stocks: top losers", m.Stocks.Losers)
	writeMovers(&b, "Real Estate Funds: top gainers", m.RealEstateFunds.Gainers)
	writeMovers(&b, "Real Estate Funds: top losers", m.RealEstateFunds.Losers)
	return b.String()
}

func writeMovers(b *strings.Builder, title string, movers []gemini.Mover) {
	if len(movers) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	fmt.Fprintln(b, "| Ticker | Name | Price | Change |")
	fmt.Fprintln(b, "|:---|:---|---:|---:|")
	for _, m := range movers {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", m.Ticker, m.Name, m.Price, m.Change)
	}
}
