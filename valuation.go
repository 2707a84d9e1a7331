package portfolio

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Quotes maps an upper case ticker to its latest unit price.
type Quotes map[string]decimal.Decimal

// lookup returns the quote for ticker. Non positive quotes are treated as
// missing, price sources report failures that way.
func (q Quotes) lookup(ticker string) (decimal.Decimal, bool) {
	v, ok := q[ticker]
	if !ok || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

// EnrichedPosition is a position valued at a current price.
type EnrichedPosition struct {
	Position
	CurrentPrice        Money   `json:"currentPrice"`
	MarketValue         Money   `json:"marketValue"`
	UnrealizedPL        Money   `json:"unrealizedPL"`
	UnrealizedPLPercent Percent `json:"unrealizedPLPercent"`
	Share               Percent `json:"share"`
	Quoted              bool    `json:"quoted"`
}

// EnrichPositions values positions at quotes. Positions without a quote are
// valued at their average cost and have Quoted unset.
func EnrichPositions(positions []Position, quotes Quotes) []EnrichedPosition {
	res := make([]EnrichedPosition, 0, len(positions))
	var total Money
	for _, p := range positions {
		e := EnrichedPosition{Position: p, CurrentPrice: p.AverageCost}
		if v, ok := quotes.lookup(p.Ticker); ok {
			e.CurrentPrice = M(v, p.AverageCost.Currency())
			e.Quoted = true
		}
		e.MarketValue = e.CurrentPrice.Mul(p.Quantity)
		e.UnrealizedPL = e.MarketValue.Sub(p.TotalCost)
		e.UnrealizedPLPercent = percentOf(e.UnrealizedPL.Ratio(p.TotalCost))
		total = total.Add(e.MarketValue)
		res = append(res, e)
	}
	for i := range res {
		res[i].Share = percentOf(res[i].MarketValue.Ratio(total))
	}
	return res
}

// Summary holds the totals of a portfolio.
type Summary struct {
	Invested  Money   `json:"invested"`
	Current   Money   `json:"current"`
	PL        Money   `json:"pl"`
	PLPercent Percent `json:"plPercent"`
}

func (s *Summary) add(e EnrichedPosition) {
	s.Invested = s.Invested.Add(e.TotalCost)
	s.Current = s.Current.Add(e.MarketValue)
	s.PL = s.Current.Sub(s.Invested)
	s.PLPercent = percentOf(s.PL.Ratio(s.Invested))
}

// Summarize totals the invested amount, the current value and the
// unrealized profit of enriched positions.
func Summarize(enriched []EnrichedPosition) Summary {
	var s Summary
	for _, e := range enriched {
		s.add(e)
	}
	return s
}

// Allocation is the summary of the positions of one asset class.
type Allocation struct {
	AssetClass AssetClass `json:"assetClass"`
	Summary
	Share Percent `json:"share"`
}

// Allocate groups enriched positions by asset class, sorted by current value
// descending. Share is the class value as a percent of the whole portfolio.
func Allocate(enriched []EnrichedPosition) []Allocation {
	byClass := make(map[AssetClass]*Allocation)
	var total Money
	for _, e := range enriched {
		a, ok := byClass[e.AssetClass]
		if !ok {
			a = &Allocation{AssetClass: e.AssetClass}
			byClass[e.AssetClass] = a
		}
		a.add(e)
		total = total.Add(e.MarketValue)
	}
	res := make([]Allocation, 0, len(byClass))
	for _, class := range AssetClasses {
		if a, ok := byClass[class]; ok {
			a.Share = percentOf(a.Current.Ratio(total))
			res = append(res, *a)
		}
	}
	slices.SortStableFunc(res, func(a, b Allocation) int {
		return b.Current.Decimal().Cmp(a.Current.Decimal())
	})
	return res
}
