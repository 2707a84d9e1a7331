// Package renderer renders portfolio reports as markdown, HTML and charts.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
)

//go:embed templates/*.md
var templates embed.FS

// Holding is the content of the holding report.
type Holding struct {
	Date      date.Date
	Positions []portfolio.EnrichedPosition
	Summary   portfolio.Summary
}

// NewHolding builds the holding report of enriched positions on a day.
func NewHolding(on date.Date, enriched []portfolio.EnrichedPosition) *Holding {
	return &Holding{Date: on, Positions: enriched, Summary: portfolio.Summarize(enriched)}
}

// Unquoted reports whether some position is valued at its average cost.
func (h *Holding) Unquoted() bool {
	for _, p := range h.Positions {
		if !p.Quoted {
			return true
		}
	}
	return false
}

// Tax is the content of the tax report.
type Tax struct {
	Reports []portfolio.TaxReport
	Annual  []portfolio.AnnualTaxSummary
	Policy  portfolio.TaxPolicy
}

// NewTax builds the tax report of monthly reports computed under policy.
func NewTax(reports []portfolio.TaxReport, policy portfolio.TaxPolicy) *Tax {
	return &Tax{Reports: reports, Annual: portfolio.AnnualTax(reports), Policy: policy}
}

// RenderHolding renders the holding report to a markdown string.
func RenderHolding(h *Holding) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"holding_positions": "holding_positions.md",
		"holding_summary":   "holding_summary.md",
	}
	return renderTemplate("holding", "holding.md", partials, h)
}

// RenderTax renders the tax report to a markdown string.
func RenderTax(t *Tax) string {
	partials := map[string]string{
		"tax_monthly": "tax_monthly.md",
		"tax_annual":  "tax_annual.md",
	}
	if len(t.Reports) == 0 {
		// An empty file name results in an empty template.
		partials["tax_monthly"] = ""
		partials["tax_annual"] = ""
	}
	return renderTemplate("tax", "tax.md", partials, t)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
