package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"text/template"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/arvowealth/portfolio/renderer"
	"github.com/google/subcommands"
)

type reportTask struct {
	Period date.Range
	Report string
}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
	benchmarks     string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "generates all reports of the portfolio" }

func (*publishCmd) Usage() string {
	return `arvo publish [-o <dir>] [-frontmatter <file>] [-b <benchmark,...>]

  Generates the current reports (holding, allocation, tax, returns) as markdown,
  an HTML page gathering them, a chart of the cumulative returns, and the
  holding report at the end of every month since the first operation, in a
  structured directory tree.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
	f.StringVar(&c.benchmarks, "b", "CDI,IBOVESPA", "Comma separated benchmarks to compare to")
}

func (c *publishCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
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
	if l.Len() == 0 {
		fmt.Println("Ledger is empty, nothing to publish.")
		return subcommands.ExitSuccess
	}
	policy, err := a.cfg.TaxPolicy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in tax configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		return subcommands.ExitFailure
	}

	today := date.Today()
	enriched := a.valuate(ctx, l, today)
	returns, benchmarks, comparisons := a.returns(ctx, l, nil, splitList(c.benchmarks))
	current := []struct{ name, md string }{
		{"holding", renderer.RenderHolding(renderer.NewHolding(today, enriched))},
		{"allocation", renderer.AllocationMarkdown(portfolio.Allocate(enriched), portfolio.Summarize(enriched))},
		{"tax", renderer.RenderTax(renderer.NewTax(portfolio.ComputeTaxReportsWithPolicy(l, policy), policy))},
		{"returns", renderer.ReturnsMarkdown(returns, comparisons)},
	}

	var pages []string
	for _, r := range current {
		pages = append(pages, r.md)
		if err := c.write(r.name+".md", []byte(r.md)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	page, err := renderer.HTMLPage("Portfolio "+a.owner, pages...)
	if err == nil {
		err = c.write("index.html", page)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if png, err := renderer.ReturnsChart(returns, benchmarks); err != nil {
		a.logger.Warn().Err(err).Msg("returns chart skipped")
	} else if err := c.write("returns.png", png); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// Prepare tasks to compute and generate each monthly report
	tasks := make([]reportTask, 0)
	for _, period := range generateMonths(l.Range().From, today.Add(-1)) {
		tasks = append(tasks, reportTask{Period: period, Report: "holding"})
	}

	// Run the tasks
	for _, task := range tasks {
		on := task.Period.To
		md := renderer.RenderHolding(renderer.NewHolding(on, a.valuate(ctx, l, on)))

		// Generate frontmatter if template is provided
		if frontMatterTpl != nil {
			fm, err := renderFrontMatter(frontMatterTpl, task)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to render front matter for %s report %s: %v\n", task.Report, task.Period.Identifier(), err)
				continue
			}
			md = fm + "\n" + md // Prepend front matter to markdown
		}

		filePath := path.Join(task.Report, date.Monthly.String(), task.Period.Identifier()+".md")
		if err := c.write(filePath, []byte(md)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	a.logger.Info().Str("dir", c.outputDir).Int("monthly", len(tasks)).Msg("reports published")
	return subcommands.ExitSuccess
}

// write writes a file under the output directory, creating its parents.
func (c *publishCmd) write(name string, content []byte) error {
	fullPath := filepath.Join(c.outputDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for file %s: %w", name, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}
	return nil
}

// generateMonths returns the calendar months from the month of startDate to
// the last month completed on endDate.
func generateMonths(startDate, endDate date.Date) []date.Range {
	if startDate.IsZero() {
		// no operations
		return []date.Range{}
	}
	ranges := []date.Range{}
	for r := date.NewRange(startDate, date.Monthly); !r.To.After(endDate); r = date.NewRange(r.To.Add(1), date.Monthly) {
		ranges = append(ranges, r)
	}
	return ranges
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var fmBuffer bytes.Buffer
	if err := tpl.Execute(&fmBuffer, task); err != nil {
		return "", err
	}
	return fmBuffer.String(), nil
}
