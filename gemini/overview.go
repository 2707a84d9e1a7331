package gemini

import (
	"context"
	"encoding/json"
	"fmt"
)

// Index is the latest value of a market index or exchange rate.
type Index struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Change   string `json:"change"`
	Positive bool   `json:"positive"`
}

// Mover is a ticker among the largest daily moves.
type Mover struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
}

// Rankings holds the top gainers and losers of a market segment.
type Rankings struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}

// MarketOverview is a snapshot of the B3 trading day.
type MarketOverview struct {
	Indices         []Index  `json:"indices"`
	Stocks          Rankings `json:"stocks"`
	RealEstateFunds Rankings `json:"realEstateFunds"`
}

type index struct {
	Label    looseString `json:"label"`
	Value    looseString `json:"value"`
	Change   looseString `json:"change"`
	Positive bool        `json:"positive"`
}

type mover struct {
	Ticker looseString `json:"ticker"`
	Name   looseString `json:"name"`
	Price  looseString `json:"price"`
	Change looseString `json:"change"`
}

type rankings struct {
	Gainers []mover `json:"gainers"`
	Losers  []mover `json:"losers"`
}

func (r rankings) convert() Rankings {
	movers := func(ms []mover) []Mover {
		res := make([]Mover, 0, len(ms))
		for _, m := range ms {
			res = append(res, Mover{Ticker: string(m.Ticker), Name: string(m.Name), Price: string(m.Price), Change: string(m.Change)})
		}
		return res
	}
	return Rankings{Gainers: movers(r.Gainers), Losers: movers(r.Losers)}
}

// FetchMarketOverview asks for today's main indices and the top 5 gainers
// and losers among stocks and real estate funds, searching the web.
func (c *Client) FetchMarketOverview(ctx context.Context) (MarketOverview, error) {
	prompt := `Return real data of today's B3 market. Include IBOV, IFIX, USD/BRL and S&P500, and the top 5 gainers and losers among stocks and among real estate funds (FIIs).
Answer only with JSON: {"indices": [{"label": "IBOV", "value": "128.000", "change": "+0,5%", "positive": true}],
"stocks": {"gainers": [{"ticker": "PETR4", "name": "Petrobras", "price": "R$ 38,12", "change": "+3,1%"}], "losers": []},
"realEstateFunds": {"gainers": [], "losers": []}}`

	c.logger.Debug().Str("model", c.model).Msg("fetching market overview")
	answer, err := c.ask(ctx, prompt, true)
	if err != nil {
		return MarketOverview{}, err
	}
	doc, err := extractJSON(answer, '{', '}')
	if err != nil {
		return MarketOverview{}, err
	}
	var got struct {
		Indices         []index  `json:"indices"`
		Stocks          rankings `json:"stocks"`
		RealEstateFunds rankings `json:"realEstateFunds"`
	}
	if err := json.Unmarshal([]byte(doc), &got); err != nil {
		return MarketOverview{}, fmt.Errorf("failed to decode market overview: %w", err)
	}
	overview := MarketOverview{
		Indices:         make([]Index, 0, len(got.Indices)),
		Stocks:          got.Stocks.convert(),
		RealEstateFunds: got.RealEstateFunds.convert(),
	}
	for _, i := range got.Indices {
		overview.Indices = append(overview.Indices, Index{Label: string(i.Label), Value: string(i.Value), Change: string(i.Change), Positive: i.Positive})
	}
	return overview, nil
}
