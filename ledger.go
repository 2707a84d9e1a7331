package portfolio

import (
	"iter"
	"slices"
	"sort"

	"github.com/arvowealth/portfolio/date"
)

// Ledger represents the list of operations of one owner.
//
// A Ledger keeps operations in insertion order. Consumers that need a
// chronological view use Chronological, which is a stable sort by date so
// operations on the same day keep their insertion order.
type Ledger struct {
	operations []Operation
}

// NewLedger creates a ledger holding a copy of ops.
func NewLedger(ops ...Operation) *Ledger {
	return &Ledger{operations: slices.Clone(ops)}
}

// Append appends operations to this ledger.
func (l *Ledger) Append(ops ...Operation) {
	l.operations = append(l.operations, ops...)
}

// Len returns the number of operations in the ledger.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.operations)
}

// Operations returns an iterator that yields each operation in insertion
// order. When filters are given, only operations accepted by at least one of
// them are yielded.
func (l *Ledger) Operations(filters ...func(Operation) bool) iter.Seq2[int, Operation] {
	return func(yield func(int, Operation) bool) {
		if l == nil {
			return
		}
		for i, op := range l.operations {
			if len(filters) > 0 && !slices.ContainsFunc(filters, func(f func(Operation) bool) bool { return f(op) }) {
				continue
			}
			if !yield(i, op) {
				return
			}
		}
	}
}

// Chronological returns a copy of the operations sorted by date. The sort is
// stable, operations on the same day keep their insertion order.
func (l *Ledger) Chronological() []Operation {
	if l == nil {
		return nil
	}
	ops := slices.Clone(l.operations)
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Date.Before(ops[j].Date)
	})
	return ops
}

// Tickers returns the distinct tickers of the ledger in lexical order.
func (l *Ledger) Tickers() []string {
	var tickers []string
	for _, op := range l.Operations() {
		tickers = append(tickers, op.Ticker)
	}
	slices.Sort(tickers)
	return slices.Compact(tickers)
}

// Range returns the range from the oldest to the newest operation date. It is
// the zero range for an empty ledger.
func (l *Ledger) Range() date.Range {
	var r date.Range
	for _, op := range l.Operations() {
		if r.From.IsZero() || op.Date.Before(r.From) {
			r.From = op.Date
		}
		if r.To.IsZero() || op.Date.After(r.To) {
			r.To = op.Date
		}
	}
	return r
}

// Get returns the operation with the given ID.
func (l *Ledger) Get(id string) (Operation, bool) {
	for _, op := range l.Operations() {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// Without returns a new ledger without the operation identified by id, and
// reports whether such an operation existed.
func (l *Ledger) Without(id string) (*Ledger, bool) {
	res := &Ledger{operations: make([]Operation, 0, l.Len())}
	found := false
	for _, op := range l.Operations() {
		if op.ID == id && !found {
			found = true
			continue
		}
		res.operations = append(res.operations, op)
	}
	return res, found
}

// Currency returns the currency label of the ledger: the currency of its
// first priced operation, or DefaultCurrency.
func (l *Ledger) Currency() string {
	for _, op := range l.Operations() {
		if c := op.Currency(); c != "" {
			return c
		}
	}
	return DefaultCurrency
}

// CheckCurrency reports a *ValidationError when op is not in the currency of
// a non empty ledger. Derived views only combine amounts of one currency.
func (l *Ledger) CheckCurrency(op Operation) error {
	if l.Len() == 0 || op.Currency() == l.Currency() {
		return nil
	}
	return &ValidationError{Field: "currency", Value: op.Currency(), Err: ErrCurrencyMismatch}
}

// ByTicker returns a predicate that filters operations by ticker.
func ByTicker(ticker string) func(Operation) bool {
	return func(op Operation) bool { return op.Ticker == ticker }
}

// ByAssetClass returns a predicate that filters operations by asset class.
func ByAssetClass(class AssetClass) func(Operation) bool {
	return func(op Operation) bool { return op.AssetClass == class }
}

// Between returns a predicate that filters operations dated within r.
func Between(r date.Range) func(Operation) bool {
	return func(op Operation) bool { return r.Contains(op.Date) }
}
