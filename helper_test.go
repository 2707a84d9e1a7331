package portfolio

import (
	"github.com/arvowealth/portfolio/date"
	"github.com/shopspring/decimal"
)

// BRL is a helper for test to create reais from const
func BRL(v float64) Money { return M(v, "BRL") }

// D is a helper for test to create a decimal from a string const
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// op is a helper for test to create an operation in BRL.
func op(day string, kind Kind, ticker string, quantity, price, costs float64, class AssetClass) Operation {
	return NewOperation(date.MustParse(day), kind, ticker, Q(quantity), BRL(price), BRL(costs), class)
}

func buy(day, ticker string, quantity, price, costs float64) Operation {
	return op(day, Buy, ticker, quantity, price, costs, IdentifyAssetClass(ticker))
}

func sell(day, ticker string, quantity, price float64) Operation {
	return op(day, Sell, ticker, quantity, price, 0, IdentifyAssetClass(ticker))
}
