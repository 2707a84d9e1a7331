package portfolio

import (
	"github.com/shopspring/decimal"
)

// Action is a rebalancing advice.
type Action int

const (
	Hold Action = iota
	Increase
	Decrease
)

func (a Action) String() string {
	switch a {
	case Increase:
		return "buy"
	case Decrease:
		return "sell"
	default:
		return "hold"
	}
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// DefaultBand is the tolerance, in percentage points, within which a
// position is considered on target.
const DefaultBand Percent = 1

// Suggestion is the rebalancing advice for one position.
type Suggestion struct {
	Ticker  string  `json:"ticker"`
	Current Percent `json:"current"`
	Target  Percent `json:"target"`
	Diff    Percent `json:"diff"`
	Action  Action  `json:"action"`
	// Amount is the value to buy or sell to reach the target.
	Amount Money `json:"amount"`
}

// Rebalance compares the share of each position to its target share. With
// nil targets every position targets an equal weight; tickers missing from
// non nil targets target zero. A band of zero or less means DefaultBand.
func Rebalance(enriched []EnrichedPosition, targets map[string]Percent, band Percent) []Suggestion {
	if band <= 0 {
		band = DefaultBand
	}
	var total Money
	for _, e := range enriched {
		total = total.Add(e.MarketValue)
	}
	res := make([]Suggestion, 0, len(enriched))
	for _, e := range enriched {
		target, ok := targets[e.Ticker]
		if targets == nil {
			target, ok = Percent(100/float64(len(enriched))), true
		}
		if !ok {
			target = 0
		}
		s := Suggestion{
			Ticker: e.Ticker,
			Target: target,
			Amount: M(decimal.Zero, e.MarketValue.Currency()),
		}
		if total.IsPositive() {
			s.Current = percentOf(e.MarketValue.Ratio(total))
			s.Diff = s.Target - s.Current
			switch {
			case s.Diff > band:
				s.Action = Increase
			case s.Diff < -band:
				s.Action = Decrease
			}
			diff := decimal.NewFromFloat(float64(s.Diff)).Abs().Shift(-2)
			s.Amount = total.Scale(diff)
		}
		res = append(res, s)
	}
	return res
}
