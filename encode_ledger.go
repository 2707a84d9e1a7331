package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON writes the operation with a stable key order. Prices and costs
// are written exactly, not rounded to the currency's minor unit.
func (o Operation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", o.ID).
		Append("date", o.Date).
		Append("ticker", o.Ticker).
		Append("kind", o.Kind).
		Append("quantity", o.Quantity).
		Append("price", o.Price.Decimal()).
		Append("costs", o.Costs.Decimal()).
		Optional("broker", o.Broker).
		Append("assetClass", o.AssetClass).
		Append("currency", o.Currency())
	return w.MarshalJSON()
}

// UnmarshalJSON reads an operation, validating it like any raw operation.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw RawOperation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	op, err := raw.Operation("")
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// DecodeLedger reads operations from a stream of JSONL data, one operation
// per line, and returns them in a Ledger in stream order. All operations must
// share the currency of the first one.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var op Operation
		if err := json.Unmarshal(lineBytes, &op); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := ledger.CheckCurrency(op); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ledger.Append(op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// EncodeOperation writes a single operation followed by a newline, in JSONL
// format.
func EncodeOperation(w io.Writer, op Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal operation %s: %w", op.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write operation: %w", err)
	}
	return nil
}

// EncodeLedger writes every operation of the ledger in insertion order, so
// that decoding it back preserves same-day ordering.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, op := range ledger.Operations() {
		if err := EncodeOperation(w, op); err != nil {
			return err
		}
	}
	return nil
}
