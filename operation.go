package portfolio

import (
	"fmt"
	"strings"

	"github.com/arvowealth/portfolio/date"
)

// Kind is the type of an operation.
type Kind int

const (
	Buy Kind = iota
	Sell
	// Contribution and Redemption model fixed-income style instruments. They
	// share buy and sell accounting.
	Contribution
	Redemption
)

var kindNames = [...]string{
	Buy:          "buy",
	Sell:         "sell",
	Contribution: "contribution",
	Redemption:   "redemption",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsBuySide reports whether the operation increases holdings.
func (k Kind) IsBuySide() bool { return k == Buy || k == Contribution }

// IsSellSide reports whether the operation decreases holdings.
func (k Kind) IsSellSide() bool { return k == Sell || k == Redemption }

// ParseKind parses a kind name. The Portuguese labels used by brokerage notes
// and the original spreadsheets are accepted too.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra", "c":
		return Buy, nil
	case "sell", "venda", "v":
		return Sell, nil
	case "contribution", "contribute", "aporte":
		return Contribution, nil
	case "redemption", "redeem", "resgate":
		return Redemption, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) (err error) {
	*k, err = ParseKind(string(b))
	return err
}

// AssetClass groups assets that share the same tax treatment.
type AssetClass int

const (
	Equity AssetClass = iota
	RealEstateFund
	TreasuryBond
	FixedIncome
	Crypto
	International
	Other
)

// AssetClasses lists every asset class in display order.
var AssetClasses = []AssetClass{Equity, RealEstateFund, TreasuryBond, FixedIncome, Crypto, International, Other}

var assetClassNames = [...]struct{ slug, title, label string }{
	Equity:         {"equity", "Equities", "Ações"},
	RealEstateFund: {"real-estate-fund", "Real Estate Funds", "Fundos Imobiliários"},
	TreasuryBond:   {"treasury-bond", "Treasury Bonds", "Tesouro Direto"},
	FixedIncome:    {"fixed-income", "Fixed Income", "Renda Fixa"},
	Crypto:         {"crypto", "Crypto", "Criptomoedas"},
	International:  {"international", "International", "Internacional"},
	Other:          {"other", "Other", "Outros"},
}

func (c AssetClass) valid() bool { return c >= 0 && int(c) < len(assetClassNames) }

func (c AssetClass) String() string {
	if !c.valid() {
		return fmt.Sprintf("asset-class(%d)", int(c))
	}
	return assetClassNames[c].slug
}

// Title returns the human readable name of the class.
func (c AssetClass) Title() string {
	if !c.valid() {
		return c.String()
	}
	return assetClassNames[c].title
}

// ParseAssetClass parses the canonical slug, the title or the Portuguese
// label of an asset class, case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	s = strings.TrimSpace(s)
	for _, c := range AssetClasses {
		n := assetClassNames[c]
		if strings.EqualFold(s, n.slug) || strings.EqualFold(s, n.title) || strings.EqualFold(s, n.label) {
			return c, nil
		}
	}
	switch strings.ToLower(s) {
	case "stock", "stocks", "acoes", "acao", "ação":
		return Equity, nil
	case "fii", "fiis", "reit":
		return RealEstateFund, nil
	}
	return Other, fmt.Errorf("%w: %q", ErrUnknownAssetClass, s)
}

func (c AssetClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *AssetClass) UnmarshalText(b []byte) (err error) {
	*c, err = ParseAssetClass(string(b))
	return err
}

// IdentifyAssetClass guesses the asset class of a B3 ticker from its shape.
// It is used when an imported operation does not state its class.
func IdentifyAssetClass(ticker string) AssetClass {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case t == "":
		return Other
	case strings.Contains(t, "TESOURO") || strings.Contains(t, "TD ") ||
		strings.HasPrefix(t, "LTN") || strings.HasPrefix(t, "LFT") || strings.HasPrefix(t, "NTN"):
		return TreasuryBond
	case strings.HasSuffix(t, "11"):
		return RealEstateFund
	case strings.HasSuffix(t, "3") || strings.HasSuffix(t, "4") || strings.HasSuffix(t, "5") || strings.HasSuffix(t, "6"):
		return Equity
	case strings.Contains(t, "BRL") || strings.Contains(t, "USD"):
		return FixedIncome
	default:
		return Other
	}
}

// Operation is a single buy, sell, contribution or redemption recorded
// against a ticker. Operations are values: once recorded they are never
// modified, corrections are new operations or deletions.
type Operation struct {
	ID         string     `json:"id"`
	Date       date.Date  `json:"date"`
	Ticker     string     `json:"ticker"`
	Kind       Kind       `json:"kind"`
	Quantity   Quantity   `json:"quantity"`
	// Price is the unit price at execution.
	Price Money `json:"price"`
	// Costs are fees. They are part of the cost basis on the buy side and
	// ignored on the sell side.
	Costs      Money      `json:"costs"`
	Broker     string     `json:"broker,omitempty"`
	AssetClass AssetClass `json:"assetClass"`
}

// NewOperation creates an operation, normalizing the ticker to upper case.
func NewOperation(day date.Date, kind Kind, ticker string, quantity Quantity, price, costs Money, class AssetClass) Operation {
	if costs.Currency() == "" {
		costs = M(costs.Decimal(), price.Currency())
	}
	return Operation{
		Date:       day,
		Ticker:     strings.ToUpper(strings.TrimSpace(ticker)),
		Kind:       kind,
		Quantity:   quantity,
		Price:      price,
		Costs:      costs,
		AssetClass: class,
	}
}

// Notional returns quantity × price, the gross value of the operation.
func (o Operation) Notional() Money { return o.Price.Mul(o.Quantity) }

// Flow returns the cash invested into the position by the operation: the
// notional plus costs on the buy side, minus the notional on the sell side.
func (o Operation) Flow() Money {
	if o.Kind.IsSellSide() {
		return o.Notional().Neg()
	}
	return o.Notional().Add(o.Costs)
}

// Currency returns the currency of the operation's price.
func (o Operation) Currency() string { return o.Price.Currency() }

func (o Operation) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", o.Date, o.Kind, o.Quantity, o.Ticker, o.Price)
}
