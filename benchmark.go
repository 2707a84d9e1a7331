package portfolio

// Benchmark is a reference index, like CDI or IBOVESPA, the portfolio is
// compared to.
type Benchmark struct {
	Label       string  `json:"label"`
	TotalReturn Percent `json:"totalReturn"`
	// MonthlyHistory holds the monthly returns of the index, oldest first.
	MonthlyHistory []Percent `json:"monthlyHistory"`
}

// Cumulative returns the compounded return of the monthly history, or
// TotalReturn when there is no history.
func (b Benchmark) Cumulative() Percent {
	if len(b.MonthlyHistory) == 0 {
		return b.TotalReturn
	}
	return compound(b.MonthlyHistory)
}

// Comparison is the performance of the portfolio against a benchmark.
type Comparison struct {
	Label     string  `json:"label"`
	Benchmark Percent `json:"benchmark"`
	Portfolio Percent `json:"portfolio"`
	// Alpha is the excess return of the portfolio over the benchmark.
	Alpha Percent `json:"alpha"`
}

// Compare compares the cumulative return of the portfolio to each
// benchmark, in order.
func Compare(portfolio Percent, benchmarks []Benchmark) []Comparison {
	res := make([]Comparison, 0, len(benchmarks))
	for _, b := range benchmarks {
		c := b.Cumulative()
		res = append(res, Comparison{
			Label:     b.Label,
			Benchmark: c,
			Portfolio: portfolio,
			Alpha:     portfolio - c,
		})
	}
	return res
}
