package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// looseString is a JSON string that models sometimes answer as a number.
type looseString string

func (t *looseString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = looseString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = looseString(n.String())
	return nil
}

// TreasuryBond is a Tesouro Direto title on offer.
type TreasuryBond struct {
	Name      string          `json:"name"`
	Maturity  string          `json:"maturity"`
	Rate      string          `json:"rate"`
	MinAmount string          `json:"minAmount"`
	Price     decimal.Decimal `json:"price"`
}

type treasuryBond struct {
	Name      looseString     `json:"name"`
	Maturity  looseString     `json:"maturity"`
	Rate      looseString     `json:"rate"`
	MinAmount looseString     `json:"minAmount"`
	Price     decimal.Decimal `json:"price"`
}

// FetchTreasuryRates asks for the current rates and prices of the Tesouro
// Direto titles, searching the web. Titles without a name are left out, the
// others are sorted by maturity.
func (c *Client) FetchTreasuryRates(ctx context.Context) ([]TreasuryBond, error) {
	prompt := `Return the CURRENT prices and rates of the Brazilian Tesouro Direto titles available for purchase.
Answer only with JSON, no explanation: [{"name": "Tesouro Selic 2029", "maturity": "2029-03-01", "rate": "SELIC + 0,1%", "minAmount": "R$ 150,00", "price": 15000.25}]`

	c.logger.Debug().Str("model", c.model).Msg("fetching treasury rates")
	answer, err := c.ask(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	doc, err := extractJSON(answer, '[', ']')
	if err != nil {
		return nil, err
	}
	var got []treasuryBond
	if err := json.Unmarshal([]byte(doc), &got); err != nil {
		return nil, fmt.Errorf("failed to decode treasury rates: %w", err)
	}
	bonds := make([]TreasuryBond, 0, len(got))
	for _, b := range got {
		if b.Name == "" {
			continue
		}
		bonds = append(bonds, TreasuryBond{
			Name:      string(b.Name),
			Maturity:  string(b.Maturity),
			Rate:      string(b.Rate),
			MinAmount: string(b.MinAmount),
			Price:     b.Price,
		})
	}
	slices.SortStableFunc(bonds, func(a, b TreasuryBond) int { return strings.Compare(a.Maturity, b.Maturity) })
	return bonds, nil
}
