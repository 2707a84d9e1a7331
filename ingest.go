package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arvowealth/portfolio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrNegative          = errors.New("must not be negative")
	ErrZeroQuantity      = errors.New("quantity must be positive")
	ErrUnknownKind       = errors.New("unknown operation kind")
	ErrUnknownAssetClass = errors.New("unknown asset class")
	ErrMissingTicker     = errors.New("missing ticker")
	ErrCurrencyMismatch  = errors.New("currency differs from the ledger currency")
)

// ValidationError reports a field of a raw operation that could not be
// converted.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RawOperation is a loosely typed operation as produced by CSV files,
// brokerage notes or language models. All fields are strings; JSON numbers
// are accepted too.
type RawOperation struct {
	ID         string `json:"id,omitempty"`
	Date       string `json:"date"`
	Ticker     string `json:"ticker"`
	Kind       string `json:"kind"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	Costs      string `json:"costs,omitempty"`
	Broker     string `json:"broker,omitempty"`
	AssetClass string `json:"assetClass,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// UnmarshalJSON reads a raw operation whose values can be JSON strings or
// numbers.
func (r *RawOperation) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	targets := map[string]*string{
		"id":         &r.ID,
		"date":       &r.Date,
		"ticker":     &r.Ticker,
		"kind":       &r.Kind,
		"type":       &r.Kind,
		"quantity":   &r.Quantity,
		"price":      &r.Price,
		"costs":      &r.Costs,
		"broker":     &r.Broker,
		"assetClass": &r.AssetClass,
		"currency":   &r.Currency,
	}
	for key, raw := range fields {
		dst, ok := targets[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		switch {
		case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		case raw[0] == '"':
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		default:
			*dst = string(raw)
		}
	}
	return nil
}

// Operation converts r into a typed operation for a ledger in currency. An
// operation naming another currency is rejected. When both are empty the
// currency is DefaultCurrency.
//
// Every failing field is reported as a *ValidationError, several failures are
// joined.
func (r RawOperation) Operation(currency string) (Operation, error) {
	var errs []error
	fail := func(field, value string, err error) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Err: err})
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if own := strings.ToUpper(strings.TrimSpace(r.Currency)); own != "" {
		if currency != "" && own != currency {
			fail("currency", r.Currency, ErrCurrencyMismatch)
		}
		currency = own
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	day, err := date.Parse(strings.TrimSpace(r.Date))
	if err != nil {
		fail("date", r.Date, ErrInvalidDate)
	}

	ticker := strings.ToUpper(strings.TrimSpace(r.Ticker))
	if ticker == "" {
		fail("ticker", r.Ticker, ErrMissingTicker)
	}

	kind, err := ParseKind(r.Kind)
	if err != nil {
		fail("kind", r.Kind, ErrUnknownKind)
	}

	quantity, err := parseAmount(r.Quantity, false)
	switch {
	case err != nil:
		fail("quantity", r.Quantity, err)
	case quantity.IsZero():
		fail("quantity", r.Quantity, ErrZeroQuantity)
	}

	price, err := parseAmount(r.Price, false)
	if err != nil {
		fail("price", r.Price, err)
	}

	costs, err := parseAmount(r.Costs, true)
	if err != nil {
		fail("costs", r.Costs, err)
	}

	class := IdentifyAssetClass(ticker)
	if strings.TrimSpace(r.AssetClass) != "" {
		if class, err = ParseAssetClass(r.AssetClass); err != nil {
			fail("assetClass", r.AssetClass, ErrUnknownAssetClass)
		}
	}

	if len(errs) > 0 {
		return Operation{}, errors.Join(errs...)
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.NewString()
	}
	op := NewOperation(day, kind, ticker, Q(quantity), M(price, currency), M(costs, currency), class)
	op.ID = id
	op.Broker = strings.TrimSpace(r.Broker)
	return op, nil
}

// parseAmount parses a non negative decimal number. Both "1234.56" and the
// Brazilian "1.234,56" are accepted, as well as a leading currency symbol.
func parseAmount(s string, optional bool) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		if optional {
			return decimal.Zero, nil
		}
		return decimal.Zero, ErrInvalidNumber
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidNumber
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegative
	}
	return d, nil
}
