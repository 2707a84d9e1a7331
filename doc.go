// Package portfolio derives the state of an investment portfolio from its
// ledger of operations.
//
// The package is a pure engine: it never performs I/O and never mutates its
// inputs. The flow of data is one way:
//   - Ledger: the ordered record of buy, sell, contribution and redemption
//     operations. Corrections are new operations or deletions.
//   - Positions: the ledger folded per ticker at weighted average cost.
//   - Valuation: positions valued at current quotes, summarized per asset
//     class.
//   - Tax: the monthly capital gains liability per asset class, with the
//     equity sales exemption.
//   - Performance: monthly money weighted returns compared to benchmarks.
//
// Quotes, benchmarks and persisted operations are supplied by collaborators
// behind the OperationLoader, QuoteFetcher and BenchmarkFetcher interfaces.
// The `arvo` command-line tool wires them together.
package portfolio
