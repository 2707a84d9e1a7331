package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/notes"
	"github.com/arvowealth/portfolio/renderer"
	"github.com/google/subcommands"
)

type importCmd struct {
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import operations from spreadsheets and brokerage notes" }
func (*importCmd) Usage() string {
	return `arvo import [-n] <file>...

  Imports operations into the ledger. Supported files:
    .csv    a spreadsheet with a header row (date, ticker, kind, quantity,
            price, costs, broker, class) in English or Portuguese.
    .jsonl  a ledger exported with 'arvo log -json'.
    .pdf    a brokerage note, read by Gemini (requires an API key).

  Valid operations are recorded, rejected rows are reported.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "Dry run: validate and print the operations without recording them.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	var imported []portfolio.Operation
	for _, file := range f.Args() {
		ops, err := a.readOperations(ctx, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s:\n%v\n", file, err)
			status = subcommands.ExitFailure
		}
		a.logger.Info().Str("file", file).Int("operations", len(ops)).Msg("operations read")
		imported = append(imported, ops...)
	}

	if c.dryRun || len(imported) == 0 {
		printMarkdown(renderer.LogMarkdown(imported))
		return status
	}
	l, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	imported = slices.DeleteFunc(imported, func(op portfolio.Operation) bool {
		_, known := l.Get(op.ID)
		if known {
			fmt.Fprintf(os.Stderr, "Skipping %s: already recorded as %s\n", op, op.ID)
		}
		return known
	})
	saved, err := a.store.Save(ctx, a.owner, imported...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving operations: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d operations into the ledger of %s\n", len(saved), a.owner)
	return status
}

// readOperations reads the valid operations of file. The error reports the
// rejected ones.
func (a *app) readOperations(ctx context.Context, file string) ([]portfolio.Operation, error) {
	currency := a.cfg.Ledger.Currency
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		raws, err := notes.ReadCSV(f)
		if err != nil {
			return nil, err
		}
		return notes.Import(raws, currency)

	case ".jsonl":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		l, err := portfolio.DecodeLedger(f)
		if err != nil {
			return nil, err
		}
		return l.Chronological(), nil

	case ".pdf":
		g := a.gemini(ctx)
		if g == nil {
			return nil, errors.New("reading brokerage notes requires a Gemini API key")
		}
		text, err := notes.ExtractPDFText(file)
		if err != nil {
			return nil, err
		}
		raws, err := g.ParseNote(ctx, text)
		if err != nil {
			return nil, err
		}
		return notes.Import(raws, currency)

	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(file))
	}
}
