package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 5 means 5%.
type Percent float64

// percentOf returns ratio*100 as a Percent.
func percentOf(ratio decimal.Decimal) Percent {
	return Percent(ratio.Shift(2).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
