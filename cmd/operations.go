package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/google/subcommands"
)

// operationCmd records an operation of a given kind.
type operationCmd struct {
	kind  portfolio.Kind
	name  string
	raw   portfolio.RawOperation
	class string
}

func newOperationCmd(kind portfolio.Kind) *operationCmd {
	name := kind.String()
	switch kind {
	case portfolio.Contribution:
		name = "contribute"
	case portfolio.Redemption:
		name = "redeem"
	}
	return &operationCmd{kind: kind, name: name}
}

func (c *operationCmd) Name() string { return c.name }
func (c *operationCmd) Synopsis() string {
	switch c.kind {
	case portfolio.Buy:
		return "buy units of an asset to open or add to a position"
	case portfolio.Sell:
		return "sell units of an asset to trim or close a position"
	case portfolio.Contribution:
		return "contribute to a fund or bond position"
	default:
		return "redeem units of a fund or bond position"
	}
}
func (c *operationCmd) Usage() string {
	return fmt.Sprintf(`arvo %s -t <ticker> -q <quantity> -p <price> [-d <date>] [-c <costs>] [-b <broker>] [-class <class>]

  Records a %s operation in the ledger. Amounts accept both "1234.56" and
  "1.234,56". The asset class is guessed from the ticker when missing.
`, c.name, c.kind)
}

func (c *operationCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.raw.Date, "d", date.Today().String(), "Operation date (YYYY-MM-DD or DD/MM/YYYY)")
	f.StringVar(&c.raw.Ticker, "t", "", "Asset ticker")
	f.StringVar(&c.raw.Quantity, "q", "", "Number of units")
	f.StringVar(&c.raw.Price, "p", "", "Unit price")
	f.StringVar(&c.raw.Costs, "c", "", "Fees and taxes paid")
	f.StringVar(&c.raw.Broker, "b", "", "Broker")
	f.StringVar(&c.class, "class", "", "Asset class: "+strings.Join(classSlugs(), ", "))
}

func classSlugs() []string {
	slugs := make([]string, 0, len(portfolio.AssetClasses))
	for _, c := range portfolio.AssetClasses {
		slugs = append(slugs, c.String())
	}
	return slugs
}

func (c *operationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.raw.Ticker == "" || c.raw.Quantity == "" || c.raw.Price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	raw := c.raw
	raw.Kind = c.kind.String()
	raw.AssetClass = c.class
	op, err := raw.Operation(a.cfg.Ledger.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in operation:\n%v\n", err)
		return subcommands.ExitUsageError
	}
	if c.kind.IsSellSide() {
		a.warnOversell(ctx, op)
	}

	saved, err := a.store.Save(ctx, a.owner, op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving operation: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s (%s)\n", saved[0], saved[0].ID)
	return subcommands.ExitSuccess
}

// warnOversell warns when a sale exceeds the held quantity. The sale is
// still recorded, the position is then closed.
func (a *app) warnOversell(ctx context.Context, op portfolio.Operation) {
	l, err := a.ledger(ctx)
	if err != nil {
		return
	}
	held := portfolio.Q(0)
	for _, p := range portfolio.PositionsAsOf(l, op.Date) {
		if p.Ticker == op.Ticker {
			held = p.Quantity
		}
	}
	if held.LessThan(op.Quantity) {
		fmt.Fprintf(os.Stderr, "Warning: selling %s %s but only %s held on %s\n", op.Quantity, op.Ticker, held, op.Date)
	}
}

// rmCmd deletes operations.
type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete operations from the ledger" }
func (*rmCmd) Usage() string {
	return `arvo rm <id>...

  Deletes operations by ID. A unique prefix of the ID, as shown by 'arvo log',
  is enough.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, prefix := range f.Args() {
		id, err := resolveID(l, prefix)
		if err == nil {
			err = a.store.Delete(ctx, a.owner, id)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", prefix, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("Deleted %s\n", id)
	}
	return status
}

var errAmbiguousID = errors.New("ambiguous operation ID")

// resolveID returns the ID of the only operation whose ID starts with prefix.
func resolveID(l *portfolio.Ledger, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("empty operation ID")
	}
	if _, ok := l.Get(prefix); ok {
		return prefix, nil
	}
	var found []string
	for _, op := range l.Operations() {
		if strings.HasPrefix(op.ID, prefix) {
			found = append(found, op.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no operation %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d operations", errAmbiguousID, prefix, len(found))
	}
}
