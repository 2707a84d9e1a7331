package portfolio

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/arvowealth/portfolio/date"
	"github.com/shopspring/decimal"
)

// ProfitMethod selects how the realized profit of a sale is measured.
type ProfitMethod int

const (
	// ProfitRealized measures the profit as proceeds minus the average cost
	// of the units sold.
	ProfitRealized ProfitMethod = iota
	// ProfitFlatMargin estimates the profit as a fixed margin of the
	// proceeds.
	ProfitFlatMargin
)

func (m ProfitMethod) String() string {
	switch m {
	case ProfitRealized:
		return "realized"
	case ProfitFlatMargin:
		return "flat-margin"
	default:
		return "unknown"
	}
}

// ParseProfitMethod parses a string into a ProfitMethod.
func ParseProfitMethod(s string) (ProfitMethod, error) {
	switch s {
	case "realized", "":
		return ProfitRealized, nil
	case "flat-margin", "flat":
		return ProfitFlatMargin, nil
	default:
		return 0, fmt.Errorf("unknown profit method: %q", s)
	}
}

// TaxPolicy holds the parameters of the monthly capital gains tax.
type TaxPolicy struct {
	// ExemptionThreshold is the monthly sales total up to which sales of the
	// exempt classes are not taxed.
	ExemptionThreshold decimal.Decimal
	ExemptClasses      []AssetClass
	RealEstateFundRate decimal.Decimal
	DefaultRate        decimal.Decimal
	Method             ProfitMethod
	// FlatMargin is the profit ratio used by ProfitFlatMargin.
	FlatMargin decimal.Decimal
}

// DefaultTaxPolicy returns the policy for Brazilian individuals: equity sales
// up to 20,000 a month are exempt, real estate fund gains are taxed at 20%
// and all other gains at 15%.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{
		ExemptionThreshold: decimal.NewFromInt(20000),
		ExemptClasses:      []AssetClass{Equity},
		RealEstateFundRate: decimal.RequireFromString("0.20"),
		DefaultRate:        decimal.RequireFromString("0.15"),
		Method:             ProfitRealized,
		FlatMargin:         decimal.RequireFromString("0.12"),
	}
}

func (p TaxPolicy) rate(class AssetClass) decimal.Decimal {
	if class == RealEstateFund {
		return p.RealEstateFundRate
	}
	return p.DefaultRate
}

// TaxReport is the tax liability of the sales of one asset class in one
// calendar month.
type TaxReport struct {
	Year           int        `json:"year"`
	Month          time.Month `json:"month"`
	AssetClass     AssetClass `json:"assetClass"`
	SalesTotal     Money      `json:"salesTotal"`
	RealizedProfit Money      `json:"realizedProfit"`
	TaxDue         Money      `json:"taxDue"`
	IsExempt       bool       `json:"isExempt"`
}

// Period returns the month of the report.
func (r TaxReport) Period() date.YearMonth { return date.YearMonth{Year: r.Year, Month: r.Month} }

// ComputeTaxReports computes the monthly tax reports with the default
// policy.
func ComputeTaxReports(l *Ledger) []TaxReport {
	return ComputeTaxReportsWithPolicy(l, DefaultTaxPolicy())
}

// ComputeTaxReportsWithPolicy computes one report per month and asset class
// having at least one sale, most recent first.
//
// The exemption is decided on the bucket's cumulative sales total, so a sale
// that crosses the threshold makes the whole month taxable.
func ComputeTaxReportsWithPolicy(l *Ledger, policy TaxPolicy) []TaxReport {
	type key struct {
		month date.YearMonth
		class AssetClass
	}
	buckets := make(map[key]*TaxReport)
	Replay(l, func(op Operation, before, _ Position) bool {
		if !op.Kind.IsSellSide() {
			return true
		}
		k := key{date.MonthOf(op.Date), op.AssetClass}
		r, ok := buckets[k]
		if !ok {
			r = &TaxReport{Year: k.month.Year, Month: k.month.Month, AssetClass: k.class}
			buckets[k] = r
		}
		proceeds := op.Notional()
		r.SalesTotal = r.SalesTotal.Add(proceeds)
		r.RealizedProfit = r.RealizedProfit.Add(policy.profit(op, before))
		r.evaluate(policy)
		return true
	})

	res := make([]TaxReport, 0, len(buckets))
	for _, r := range buckets {
		res = append(res, *r)
	}
	slices.SortFunc(res, func(a, b TaxReport) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Month, a.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.AssetClass, b.AssetClass)
	})
	return res
}

// profit returns the profit of the sale op given the position before it.
// Units sold beyond the held quantity carry no basis.
func (p TaxPolicy) profit(op Operation, before Position) Money {
	proceeds := op.Notional()
	if p.Method == ProfitFlatMargin {
		return proceeds.Scale(p.FlatMargin)
	}
	basis := before.AverageCost.Mul(op.Quantity.Min(before.Quantity))
	return proceeds.Sub(basis)
}

func (r *TaxReport) evaluate(policy TaxPolicy) {
	cur := r.SalesTotal.Currency()
	r.IsExempt = slices.Contains(policy.ExemptClasses, r.AssetClass) &&
		r.SalesTotal.Decimal().LessThanOrEqual(policy.ExemptionThreshold)
	if r.IsExempt {
		r.TaxDue = M(decimal.Zero, cur)
		return
	}
	r.TaxDue = MaxMoney(M(decimal.Zero, cur), r.RealizedProfit.Scale(policy.rate(r.AssetClass)))
}

// AnnualTaxSummary totals the tax reports of a year.
type AnnualTaxSummary struct {
	Year           int   `json:"year"`
	SalesTotal     Money `json:"salesTotal"`
	RealizedProfit Money `json:"realizedProfit"`
	TaxDue         Money `json:"taxDue"`
	// ExemptProfit is the part of the realized profit made in exempt months.
	ExemptProfit Money `json:"exemptProfit"`
}

// AnnualTax totals reports per year, most recent first.
func AnnualTax(reports []TaxReport) []AnnualTaxSummary {
	byYear := make(map[int]*AnnualTaxSummary)
	for _, r := range reports {
		s, ok := byYear[r.Year]
		if !ok {
			s = &AnnualTaxSummary{Year: r.Year, ExemptProfit: M(decimal.Zero, r.SalesTotal.Currency())}
			byYear[r.Year] = s
		}
		s.SalesTotal = s.SalesTotal.Add(r.SalesTotal)
		s.RealizedProfit = s.RealizedProfit.Add(r.RealizedProfit)
		s.TaxDue = s.TaxDue.Add(r.TaxDue)
		if r.IsExempt {
			s.ExemptProfit = s.ExemptProfit.Add(r.RealizedProfit)
		}
	}
	res := make([]AnnualTaxSummary, 0, len(byYear))
	for _, s := range byYear {
		res = append(res, *s)
	}
	slices.SortFunc(res, func(a, b AnnualTaxSummary) int { return cmp.Compare(b.Year, a.Year) })
	return res
}
