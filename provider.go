package portfolio

import "context"

// OperationLoader loads the operations recorded by an owner.
type OperationLoader interface {
	LoadOperations(ctx context.Context, owner string) ([]Operation, error)
}

// QuoteFetcher fetches the latest price of tickers.
//
// Fetching is best-effort: the returned Quotes may miss tickers, and a
// partial result can come with a non nil error.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, tickers []string) (Quotes, error)
}

// BenchmarkFetcher fetches the returns of a reference index.
type BenchmarkFetcher interface {
	FetchBenchmark(ctx context.Context, label string) (Benchmark, error)
}
