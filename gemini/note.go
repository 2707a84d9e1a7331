package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arvowealth/portfolio"
)

const notePrompt = `Extract every trade of the following brokerage note.
Answer only with a JSON array, one object per trade:
[{"date": "YYYY-MM-DD", "ticker": "PETR4", "kind": "buy|sell", "quantity": 100, "price": 10.50, "costs": 1.20, "broker": "name"}]
Spread the note fees over the trades, proportionally to their value, in "costs".

Note:
`

// ParseNote extracts the operations of a brokerage note text. The result
// still has to be validated.
func (c *Client) ParseNote(ctx context.Context, text string) ([]portfolio.RawOperation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	c.logger.Debug().Str("model", c.model).Int("length", len(text)).Msg("parsing brokerage note")
	answer, err := c.ask(ctx, notePrompt+text, false)
	if err != nil {
		return nil, err
	}
	doc, err := extractJSON(answer, '[', ']')
	if err != nil {
		return nil, err
	}
	var raws []portfolio.RawOperation
	if err := json.Unmarshal([]byte(doc), &raws); err != nil {
		return nil, fmt.Errorf("failed to decode operations: %w", err)
	}
	return raws, nil
}
