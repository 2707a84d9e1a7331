package portfolio

import (
	"testing"
	"time"
)

func findReport(reports []TaxReport, year int, month time.Month, class AssetClass) (TaxReport, bool) {
	for _, r := range reports {
		if r.Year == year && r.Month == month && r.AssetClass == class {
			return r, true
		}
	}
	return TaxReport{}, false
}

func TestComputeTaxReports(t *testing.T) {
	acquire := buy("2025-01-05", "VALE3", 2000, 10, 0)
	testCases := []struct {
		name       string
		ops        []Operation
		wantSales  Money
		wantProfit Money
		wantTax    Money
		wantExempt bool
	}{
		{
			name:       "single sale under the threshold",
			ops:        []Operation{acquire, sell("2025-02-05", "VALE3", 1000, 15)},
			wantSales:  BRL(15000),
			wantProfit: BRL(5000),
			wantTax:    BRL(0),
			wantExempt: true,
		},
		{
			name:       "cumulative sales cross the threshold",
			ops:        []Operation{acquire, sell("2025-02-05", "VALE3", 1000, 15), sell("2025-02-20", "VALE3", 500, 20)},
			wantSales:  BRL(25000),
			wantProfit: BRL(10000),
			wantTax:    BRL(1500),
			wantExempt: false,
		},
		{
			name:       "exactly the threshold is exempt",
			ops:        []Operation{acquire, sell("2025-02-05", "VALE3", 1000, 20)},
			wantSales:  BRL(20000),
			wantProfit: BRL(10000),
			wantTax:    BRL(0),
			wantExempt: true,
		},
		{
			name:       "one real over the threshold is taxed",
			ops:        []Operation{acquire, sell("2025-02-05", "VALE3", 1000, 20.001)},
			wantSales:  BRL(20001),
			wantProfit: BRL(10001),
			wantTax:    BRL(1500.15),
			wantExempt: false,
		},
		{
			name:       "loss is never negative tax",
			ops:        []Operation{acquire, sell("2025-02-05", "VALE3", 2000, 8)},
			wantSales:  BRL(16000),
			wantProfit: BRL(-4000),
			wantTax:    BRL(0),
			wantExempt: true,
		},
		{
			name:       "taxable loss",
			ops:        []Operation{buy("2025-01-05", "VALE3", 5000, 10, 0), sell("2025-02-05", "VALE3", 3000, 8)},
			wantSales:  BRL(24000),
			wantProfit: BRL(-6000),
			wantTax:    BRL(0),
			wantExempt: false,
		},
		{
			name:       "costs raise the basis",
			ops:        []Operation{buy("2025-01-05", "VALE3", 100, 10, 100), sell("2025-02-05", "VALE3", 100, 300)},
			wantSales:  BRL(30000),
			wantProfit: BRL(28900),
			wantTax:    BRL(4335),
			wantExempt: false,
		},
		{
			name:       "oversold units carry no basis",
			ops:        []Operation{buy("2025-01-05", "VALE3", 1000, 10, 0), sell("2025-02-05", "VALE3", 1500, 20)},
			wantSales:  BRL(30000),
			wantProfit: BRL(20000),
			wantTax:    BRL(3000),
			wantExempt: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reports := ComputeTaxReports(NewLedger(tc.ops...))
			if len(reports) != 1 {
				t.Fatalf("got %d reports, want 1: %v", len(reports), reports)
			}
			r := reports[0]
			if r.Year != 2025 || r.Month != time.February || r.AssetClass != Equity {
				t.Errorf("report bucket = %d-%v %v, want 2025-February equity", r.Year, r.Month, r.AssetClass)
			}
			if !r.SalesTotal.Equal(tc.wantSales) {
				t.Errorf("SalesTotal = %v, want %v", r.SalesTotal.Decimal(), tc.wantSales.Decimal())
			}
			if !r.RealizedProfit.Equal(tc.wantProfit) {
				t.Errorf("RealizedProfit = %v, want %v", r.RealizedProfit.Decimal(), tc.wantProfit.Decimal())
			}
			if !r.TaxDue.Equal(tc.wantTax) {
				t.Errorf("TaxDue = %v, want %v", r.TaxDue.Decimal(), tc.wantTax.Decimal())
			}
			if r.IsExempt != tc.wantExempt {
				t.Errorf("IsExempt = %v, want %v", r.IsExempt, tc.wantExempt)
			}
		})
	}
}

func TestComputeTaxReports_Classes(t *testing.T) {
	l := NewLedger(
		buy("2025-01-05", "HGLG11", 100, 100, 0),
		buy("2025-01-05", "PETR4", 100, 10, 0),
		op("2025-01-06", Contribution, "TESOURO IPCA 2035", 2, 3000, 0, TreasuryBond),
		sell("2025-03-10", "HGLG11", 100, 120),
		sell("2025-03-11", "PETR4", 50, 12),
		op("2025-04-02", Redemption, "TESOURO IPCA 2035", 1, 3300, 0, TreasuryBond),
	)
	reports := ComputeTaxReports(l)
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3: %v", len(reports), reports)
	}

	// most recent first, then by asset class.
	order := []struct {
		month time.Month
		class AssetClass
	}{{time.April, TreasuryBond}, {time.March, Equity}, {time.March, RealEstateFund}}
	for i, want := range order {
		if reports[i].Month != want.month || reports[i].AssetClass != want.class {
			t.Errorf("report %d = %v %v, want %v %v", i, reports[i].Month, reports[i].AssetClass, want.month, want.class)
		}
	}

	fii, _ := findReport(reports, 2025, time.March, RealEstateFund)
	if fii.IsExempt || !fii.TaxDue.Equal(BRL(400)) {
		t.Errorf("real estate fund: exempt %v tax %v, want taxed 400 at 20%%", fii.IsExempt, fii.TaxDue.Decimal())
	}
	equity, _ := findReport(reports, 2025, time.March, Equity)
	if !equity.IsExempt || !equity.RealizedProfit.Equal(BRL(100)) {
		t.Errorf("equity: exempt %v profit %v, want exempt with 100 profit", equity.IsExempt, equity.RealizedProfit.Decimal())
	}
	bond, _ := findReport(reports, 2025, time.April, TreasuryBond)
	if bond.IsExempt || !bond.TaxDue.Equal(BRL(45)) {
		t.Errorf("treasury bond: exempt %v tax %v, want taxed 45 at 15%%", bond.IsExempt, bond.TaxDue.Decimal())
	}
}

func TestComputeTaxReports_NoSales(t *testing.T) {
	l := NewLedger(buy("2025-01-05", "PETR4", 100, 10, 0))
	if got := ComputeTaxReports(l); len(got) != 0 {
		t.Errorf("got %d reports for a ledger without sales, want 0", len(got))
	}
}

func TestComputeTaxReportsWithPolicy_FlatMargin(t *testing.T) {
	policy := DefaultTaxPolicy()
	policy.Method = ProfitFlatMargin
	l := NewLedger(
		buy("2025-01-05", "PETR4", 1000, 10, 0),
		sell("2025-02-05", "PETR4", 1000, 30),
	)
	reports := ComputeTaxReportsWithPolicy(l, policy)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if r := reports[0]; !r.RealizedProfit.Equal(BRL(3600)) || !r.TaxDue.Equal(BRL(540)) {
		t.Errorf("flat margin: profit %v tax %v, want 3600 and 540", r.RealizedProfit.Decimal(), r.TaxDue.Decimal())
	}
}

func TestAnnualTax(t *testing.T) {
	l := NewLedger(
		buy("2024-01-05", "PETR4", 3000, 10, 0),
		sell("2024-05-05", "PETR4", 1000, 12),
		sell("2024-06-05", "PETR4", 1000, 25),
		sell("2025-02-05", "PETR4", 1000, 11),
	)
	got := AnnualTax(ComputeTaxReports(l))
	if len(got) != 2 {
		t.Fatalf("got %d years, want 2", len(got))
	}
	y2025, y2024 := got[0], got[1]
	if y2025.Year != 2025 || y2024.Year != 2024 {
		t.Fatalf("years = %d, %d, want 2025, 2024", y2025.Year, y2024.Year)
	}
	if !y2024.SalesTotal.Equal(BRL(37000)) || !y2024.RealizedProfit.Equal(BRL(17000)) {
		t.Errorf("2024 sales %v profit %v, want 37000 and 17000", y2024.SalesTotal.Decimal(), y2024.RealizedProfit.Decimal())
	}
	if !y2024.TaxDue.Equal(BRL(2250)) || !y2024.ExemptProfit.Equal(BRL(2000)) {
		t.Errorf("2024 tax %v exempt profit %v, want 2250 and 2000", y2024.TaxDue.Decimal(), y2024.ExemptProfit.Decimal())
	}
	if !y2025.TaxDue.Equal(BRL(0)) || !y2025.ExemptProfit.Equal(BRL(1000)) {
		t.Errorf("2025 tax %v exempt profit %v, want 0 and 1000", y2025.TaxDue.Decimal(), y2025.ExemptProfit.Decimal())
	}
}

func TestParseProfitMethod(t *testing.T) {
	for _, m := range []ProfitMethod{ProfitRealized, ProfitFlatMargin} {
		got, err := ParseProfitMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseProfitMethod(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseProfitMethod("fifo"); err == nil {
		t.Error("ParseProfitMethod(fifo) succeeded, want an error")
	}
}
