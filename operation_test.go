package portfolio

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"buy", Buy, false},
		{"Compra", Buy, false},
		{" venda ", Sell, false},
		{"APORTE", Contribution, false},
		{"resgate", Redemption, false},
		{"redemption", Redemption, false},
		{"dividend", 0, true},
		{"", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseKind(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestKind_Sides(t *testing.T) {
	for _, k := range []Kind{Buy, Sell, Contribution, Redemption} {
		if k.IsBuySide() == k.IsSellSide() {
			t.Errorf("%v: buy side %v, sell side %v", k, k.IsBuySide(), k.IsSellSide())
		}
	}
	if !Contribution.IsBuySide() || !Redemption.IsSellSide() {
		t.Error("contribution and redemption must share buy and sell accounting")
	}
}

func TestParseAssetClass(t *testing.T) {
	testCases := []struct {
		input string
		want  AssetClass
	}{
		{"equity", Equity},
		{"Ações", Equity},
		{"fundos imobiliários", RealEstateFund},
		{"FII", RealEstateFund},
		{"Tesouro Direto", TreasuryBond},
		{"renda fixa", FixedIncome},
		{"Criptomoedas", Crypto},
		{"international", International},
		{"Outros", Other},
	}
	for _, tc := range testCases {
		got, err := ParseAssetClass(tc.input)
		if err != nil {
			t.Errorf("ParseAssetClass(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAssetClass(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
	if _, err := ParseAssetClass("commodities"); !errors.Is(err, ErrUnknownAssetClass) {
		t.Errorf("ParseAssetClass(commodities) error = %v, want ErrUnknownAssetClass", err)
	}
}

func TestAssetClass_TextRoundTrip(t *testing.T) {
	for _, c := range AssetClasses {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}
		var got AssetClass
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if got != c {
			t.Errorf("round trip of %v gave %v", c, got)
		}
	}
}

func TestIdentifyAssetClass(t *testing.T) {
	testCases := []struct {
		ticker string
		want   AssetClass
	}{
		{"PETR4", Equity},
		{"vale3", Equity},
		{"TAEE11", RealEstateFund},
		{"HGLG11", RealEstateFund},
		{"Tesouro Selic 2029", TreasuryBond},
		{"NTNB2035", TreasuryBond},
		{"CDB-BRL", FixedIncome},
		{"BTC", Other},
		{"", Other},
	}
	for _, tc := range testCases {
		if got := IdentifyAssetClass(tc.ticker); got != tc.want {
			t.Errorf("IdentifyAssetClass(%q) = %v, want %v", tc.ticker, got, tc.want)
		}
	}
}

func TestOperation_NotionalAndFlow(t *testing.T) {
	b := buy("2025-01-10", "PETR4", 100, 10, 1)
	if got, want := b.Notional(), BRL(1000); !got.Equal(want) {
		t.Errorf("Notional() = %v, want %v", got, want)
	}
	if got, want := b.Flow(), BRL(1001); !got.Equal(want) {
		t.Errorf("buy Flow() = %v, want %v", got, want)
	}
	s := op("2025-01-11", Sell, "PETR4", 50, 12, 2, Equity)
	if got, want := s.Flow(), BRL(-600); !got.Equal(want) {
		t.Errorf("sell Flow() = %v, want %v", got, want)
	}
}

func TestNewOperation_NormalizesTicker(t *testing.T) {
	o := buy("2025-01-10", " petr4 ", 1, 10, 0)
	if o.Ticker != "PETR4" {
		t.Errorf("Ticker = %q, want PETR4", o.Ticker)
	}
}
