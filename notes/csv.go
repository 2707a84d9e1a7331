package notes

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arvowealth/portfolio"
)

// ErrMissingColumn is returned when a spreadsheet lacks a required column.
var ErrMissingColumn = errors.New("missing column")

type column int

const (
	colID column = iota
	colDate
	colTicker
	colKind
	colQuantity
	colPrice
	colCosts
	colBroker
	colAssetClass
	colCurrency
)

// headers maps normalized header names, English and Portuguese, to columns.
var headers = map[string]column{
	"id":         colID,
	"date":       colDate,
	"data":       colDate,
	"ticker":     colTicker,
	"ativo":      colTicker,
	"codigo":     colTicker,
	"kind":       colKind,
	"type":       colKind,
	"tipo":       colKind,
	"operacao":   colKind,
	"quantity":   colQuantity,
	"quantidade": colQuantity,
	"qtd":        colQuantity,
	"price":      colPrice,
	"preco":      colPrice,
	"costs":      colCosts,
	"custos":     colCosts,
	"taxas":      colCosts,
	"broker":     colBroker,
	"corretora":  colBroker,
	"assetclass": colAssetClass,
	"class":      colAssetClass,
	"classe":     colAssetClass,
	"currency":   colCurrency,
	"moeda":      colCurrency,
}

var required = []column{colDate, colTicker, colKind, colQuantity, colPrice}

var accents = strings.NewReplacer("ç", "c", "ã", "a", "á", "a", "â", "a", "é", "e", "ê", "e", "í", "i", "ó", "o", "ô", "o", "õ", "o", "ú", "u")

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = accents.Replace(h)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ReadCSV reads a spreadsheet of operations with a header row. Header names
// are matched case-insensitively in English or Portuguese, unknown columns
// are ignored, and a semicolon separator is detected from the header row.
func ReadCSV(r io.Reader) ([]portfolio.RawOperation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		reader.Comma = ';'
	}

	names, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	index := make(map[column]int)
	for i, name := range names {
		if c, ok := headers[normalizeHeader(name)]; ok {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
	}
	for _, c := range required {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, columnNames[c])
		}
	}

	var raws []portfolio.RawOperation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		field := func(c column) string {
			i, ok := index[c]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		raw := portfolio.RawOperation{
			ID:         field(colID),
			Date:       field(colDate),
			Ticker:     field(colTicker),
			Kind:       field(colKind),
			Quantity:   field(colQuantity),
			Price:      field(colPrice),
			Costs:      field(colCosts),
			Broker:     field(colBroker),
			AssetClass: field(colAssetClass),
			Currency:   field(colCurrency),
		}
		if raw == (portfolio.RawOperation{}) {
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

var columnNames = map[column]string{
	colDate:     "date",
	colTicker:   "ticker",
	colKind:     "kind",
	colQuantity: "quantity",
	colPrice:    "price",
}

// Import validates raw operations. It returns the valid ones and, when some
// are rejected, an error joining one error per rejected row (1-based).
func Import(raws []portfolio.RawOperation, currency string) ([]portfolio.Operation, error) {
	ops := make([]portfolio.Operation, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		op, err := raw.Operation(currency)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		ops = append(ops, op)
	}
	return ops, errors.Join(errs...)
}
