package portfolio

import (
	"slices"
	"time"

	"github.com/arvowealth/portfolio/date"
	"github.com/shopspring/decimal"
)

// MonthlyReturn holds the returns of one calendar year. A nil month has no
// return: it is in the future, before the first operation, or nothing was
// held nor traded during it.
type MonthlyReturn struct {
	Year   int          `json:"year"`
	Months [12]*Percent `json:"months"`
	// Total is the compounded return of the non nil months.
	Total Percent `json:"total"`
}

// Month returns the return of month m, or nil.
func (r MonthlyReturn) Month(m time.Month) *Percent { return r.Months[m-1] }

// Prices holds the known price history of tickers.
type Prices map[string]*date.History[decimal.Decimal]

// ReturnsConfig parameterizes ComputeMonthlyReturns.
type ReturnsConfig struct {
	// On is the valuation day, today when zero.
	On date.Date
	// Years to report, the previous and current years of On when empty.
	Years []int
	// Prices is the price history used to value past month ends.
	Prices Prices
}

// ComputeMonthlyReturns computes the money weighted return of every month of
// the configured years using the Modified Dietz method:
//
//	r = (V1 - V0 - ΣF) / (V0 + Σ wF)
//
// V0 and V1 are the values of the holdings at the start and end of the month,
// F are the operation flows and w the fraction of the month each flow was
// invested. The current month ends on cfg.On and is valued at the quoted
// prices of positions. Past month ends are valued at the Prices history, or
// at the last execution price of each ticker.
func ComputeMonthlyReturns(l *Ledger, positions []EnrichedPosition, cfg ReturnsConfig) []MonthlyReturn {
	on := cfg.On
	if on.IsZero() {
		on = date.Today()
	}
	years := slices.Clone(cfg.Years)
	if len(years) == 0 {
		years = []int{on.Year() - 1, on.Year()}
	}
	slices.Sort(years)
	years = slices.Compact(years)

	v := valuer{
		ops:     l.Chronological(),
		prices:  cfg.Prices,
		current: make(map[string]decimal.Decimal),
		on:      on,
	}
	for _, p := range positions {
		if p.Quoted {
			v.current[p.Ticker] = p.CurrentPrice.Decimal()
		}
	}

	res := make([]MonthlyReturn, 0, len(years))
	for _, year := range years {
		r := MonthlyReturn{Year: year}
		var months []Percent
		for m := time.January; m <= time.December; m++ {
			ret, ok := v.monthlyReturn(date.YearMonth{Year: year, Month: m})
			if !ok {
				continue
			}
			r.Months[m-1] = &ret
			months = append(months, ret)
		}
		r.Total = compound(months)
		res = append(res, r)
	}
	return res
}

// valuer values the holdings of a chronological list of operations.
type valuer struct {
	ops     []Operation
	prices  Prices
	current map[string]decimal.Decimal // quotes valid on the valuation day
	on      date.Date
}

func (v *valuer) monthlyReturn(month date.YearMonth) (Percent, bool) {
	if len(v.ops) == 0 || month.After(date.MonthOf(v.on)) || month.Last().Before(v.ops[0].Date) {
		return 0, false
	}
	start, end := month.First(), month.Last()
	if month == date.MonthOf(v.on) {
		end = v.on
	}
	days := decimal.NewFromInt(int64(end.Day()))

	v0 := v.value(start.Add(-1))
	v1 := v.value(end)

	var flows, weighted decimal.Decimal
	hasFlows := false
	for _, op := range v.ops {
		if op.Date.Before(start) {
			continue
		}
		if op.Date.After(end) {
			break
		}
		hasFlows = true
		f := op.Flow().Decimal()
		w := days.Sub(decimal.NewFromInt(int64(op.Date.Day() - 1))).Div(days)
		flows = flows.Add(f)
		weighted = weighted.Add(f.Mul(w))
	}
	if v0.IsZero() && v1.IsZero() && !hasFlows {
		return 0, false
	}
	denominator := v0.Add(weighted)
	if denominator.IsZero() {
		return 0, true
	}
	return percentOf(v1.Sub(v0).Sub(flows).Div(denominator)), true
}

// value returns the value of the holdings at the end of day.
func (v *valuer) value(day date.Date) decimal.Decimal {
	holdings := make(map[string]*Position)
	lastPrice := make(map[string]decimal.Decimal)
	for _, op := range v.ops {
		if op.Date.After(day) {
			break
		}
		p, ok := holdings[op.Ticker]
		if !ok {
			p = &Position{}
			holdings[op.Ticker] = p
		}
		p.apply(op)
		lastPrice[op.Ticker] = op.Price.Decimal()
	}
	var total decimal.Decimal
	for ticker, p := range holdings {
		if !p.IsOpen() {
			continue
		}
		total = total.Add(p.Quantity.Decimal().Mul(v.priceAt(ticker, day, lastPrice[ticker])))
	}
	return total
}

// priceAt returns the price of ticker on day, falling back to the last
// execution price.
func (v *valuer) priceAt(ticker string, day date.Date, executed decimal.Decimal) decimal.Decimal {
	if day == v.on {
		if p, ok := v.current[ticker]; ok {
			return p
		}
	}
	if h := v.prices[ticker]; h != nil {
		if p, ok := h.ValueAsOf(day); ok && p.IsPositive() {
			return p
		}
	}
	return executed
}

// compound returns the compounded return of a series of returns.
func compound(returns []Percent) Percent {
	if len(returns) == 0 {
		return 0
	}
	hundred := decimal.NewFromInt(100)
	growth := decimal.NewFromInt(1)
	for _, r := range returns {
		growth = growth.Mul(decimal.NewFromFloat(float64(r)).Div(hundred).Add(decimal.NewFromInt(1)))
	}
	return percentOf(growth.Sub(decimal.NewFromInt(1)))
}

// CumulativeReturn compounds a series of monthly returns, skipping nil
// months.
func CumulativeReturn(months []*Percent) Percent {
	var rs []Percent
	for _, m := range months {
		if m != nil {
			rs = append(rs, *m)
		}
	}
	return compound(rs)
}

// Flatten concatenates the months of returns in chronological order.
func Flatten(returns []MonthlyReturn) []*Percent {
	sorted := slices.Clone(returns)
	slices.SortFunc(sorted, func(a, b MonthlyReturn) int { return a.Year - b.Year })
	res := make([]*Percent, 0, 12*len(sorted))
	for _, r := range sorted {
		res = append(res, r.Months[:]...)
	}
	return res
}
