package portfolio

import (
	"slices"
	"strings"

	"github.com/arvowealth/portfolio/date"
	"github.com/shopspring/decimal"
)

// epsilon is the quantity under which a position is considered closed.
var epsilon = Q(decimal.New(1, -4))

// Position is the aggregated holding of a ticker, valued at its weighted
// average cost.
type Position struct {
	Ticker      string     `json:"ticker"`
	AssetClass  AssetClass `json:"assetClass"`
	Broker      string     `json:"broker,omitempty"`
	Quantity    Quantity   `json:"quantity"`
	AverageCost Money      `json:"averageCost"`
	TotalCost   Money      `json:"totalCost"`
}

// IsOpen reports whether the position still holds units.
func (p Position) IsOpen() bool { return p.Quantity.IsPositive() }

// apply folds op into the position.
//
// On the buy side the notional and the costs are added to the total cost and
// the average cost is recomputed; broker and asset class follow the latest
// buy-side operation. On the sell side the average cost is kept and the total
// cost is reduced by quantity × average cost. A sale leaving less than epsilon,
// including an oversold one, resets the position to zero.
func (p *Position) apply(op Operation) {
	p.Ticker = op.Ticker
	switch {
	case op.Kind.IsBuySide():
		p.AssetClass = op.AssetClass
		p.Broker = op.Broker
		p.TotalCost = p.TotalCost.Add(op.Notional()).Add(op.Costs)
		p.Quantity = p.Quantity.Add(op.Quantity)
		p.AverageCost = p.TotalCost.Div(p.Quantity)
	case op.Kind.IsSellSide():
		if p.Quantity.IsZero() {
			p.AssetClass = op.AssetClass
		}
		p.TotalCost = p.TotalCost.Sub(p.AverageCost.Mul(op.Quantity))
		p.Quantity = p.Quantity.Sub(op.Quantity)
		if p.Quantity.LessThanOrEqual(epsilon) {
			cur := op.Currency()
			p.Quantity = Quantity{}
			p.TotalCost = M(decimal.Zero, cur)
			p.AverageCost = M(decimal.Zero, cur)
		}
	}
}

// Replay folds the ledger in chronological order and calls visit with every
// operation and the position of its ticker just before and just after it.
// Replay stops when visit returns false.
func Replay(l *Ledger, visit func(op Operation, before, after Position) bool) {
	positions := make(map[string]*Position)
	for _, op := range l.Chronological() {
		p, ok := positions[op.Ticker]
		if !ok {
			p = &Position{Ticker: op.Ticker}
			positions[op.Ticker] = p
		}
		before := *p
		p.apply(op)
		if !visit(op, before, *p) {
			return
		}
	}
}

// ComputePositions aggregates the ledger into the open positions, sorted by
// ticker.
func ComputePositions(l *Ledger) []Position {
	return PositionsAsOf(l, date.Date{})
}

// PositionsAsOf aggregates the operations dated on or before on. A zero date
// means the whole ledger.
func PositionsAsOf(l *Ledger, on date.Date) []Position {
	last := make(map[string]Position)
	Replay(l, func(op Operation, _, after Position) bool {
		if !on.IsZero() && op.Date.After(on) {
			return false
		}
		last[op.Ticker] = after
		return true
	})
	res := make([]Position, 0, len(last))
	for _, p := range last {
		if p.IsOpen() {
			res = append(res, p)
		}
	}
	slices.SortFunc(res, func(a, b Position) int { return strings.Compare(a.Ticker, b.Ticker) })
	return res
}
