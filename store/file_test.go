package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silent() *log.Logger { return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}} }

func brl(v float64) portfolio.Money { return portfolio.M(v, "BRL") }

func operation(day string, kind portfolio.Kind, ticker string, quantity, price float64) portfolio.Operation {
	return portfolio.NewOperation(date.MustParse(day), kind, ticker, portfolio.Q(quantity), brl(price), brl(0), portfolio.IdentifyAssetClass(ticker))
}

func TestFile_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "ledgers"), silent())
	require.NoError(t, err)

	ops, err := s.LoadOperations(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ops, "an unknown owner has no operations")

	withID := operation("2025-01-10", portfolio.Buy, "PETR4", 100, 10)
	withID.ID = "first"
	saved, err := s.Save(ctx, "alice", withID, operation("2025-02-10", portfolio.Sell, "PETR4", 50, 12))
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "first", saved[0].ID)
	assert.NotEmpty(t, saved[1].ID)

	_, err = s.Save(ctx, "alice", operation("2025-03-10", portfolio.Buy, "VALE3", 1, 60))
	require.NoError(t, err)

	ops, err = s.LoadOperations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, "first", ops[0].ID)
	assert.Equal(t, saved[1].ID, ops[1].ID)
	assert.Equal(t, "VALE3", ops[2].Ticker)
	assert.True(t, ops[1].Price.Equal(brl(12)))
	assert.Equal(t, portfolio.Sell, ops[1].Kind)
}

func TestFile_SaveRejectsOtherCurrency(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir(), silent())
	require.NoError(t, err)
	_, err = s.Save(ctx, "alice", operation("2025-01-10", portfolio.Buy, "PETR4", 100, 10))
	require.NoError(t, err)

	usd := portfolio.NewOperation(date.MustParse("2025-01-11"), portfolio.Buy, "AAPL", portfolio.Q(1),
		portfolio.M(200, "USD"), portfolio.M(0, "USD"), portfolio.International)
	_, err = s.Save(ctx, "alice", operation("2025-01-11", portfolio.Buy, "VALE3", 1, 60), usd)
	require.ErrorIs(t, err, portfolio.ErrCurrencyMismatch)

	ops, err := s.LoadOperations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, ops, 1, "a refused batch writes nothing")

	// a new ledger takes the currency of its first operation.
	_, err = s.Save(ctx, "bob", usd, operation("2025-01-12", portfolio.Buy, "PETR4", 1, 10))
	require.ErrorIs(t, err, portfolio.ErrCurrencyMismatch)
	_, err = s.Save(ctx, "bob", usd)
	require.NoError(t, err)
}

func TestFile_Delete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, silent())
	require.NoError(t, err)

	saved, err := s.Save(ctx, "bob",
		operation("2025-01-10", portfolio.Buy, "PETR4", 100, 10),
		operation("2025-01-11", portfolio.Buy, "ITUB4", 10, 30),
	)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "bob", saved[0].ID))
	l, err := s.Ledger(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	_, found := l.Get(saved[0].ID)
	assert.False(t, found)
	_, found = l.Get(saved[1].ID)
	assert.True(t, found)

	err = s.Delete(ctx, "bob", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFile_Owners(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, silent())
	require.NoError(t, err)
	for _, owner := range []string{"carol", "alice"} {
		_, err := s.Save(ctx, owner, operation("2025-01-10", portfolio.Buy, "PETR4", 1, 10))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	owners, err := s.Owners()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, owners)
}

func TestFile_InvalidOwner(t *testing.T) {
	s, err := Open(t.TempDir(), silent())
	require.NoError(t, err)
	for _, owner := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := s.LoadOperations(context.Background(), owner)
		assert.ErrorIs(t, err, ErrInvalidOwner, owner)
	}
}

func TestFile_CorruptLedger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dave.jsonl"), []byte("{\"date\":\"nope\"}\n"), 0o644))
	s, err := Open(dir, silent())
	require.NoError(t, err)
	_, err = s.LoadOperations(context.Background(), "dave")
	assert.ErrorContains(t, err, "line 1")
}

func TestFile_CancelledContext(t *testing.T) {
	s, err := Open(t.TempDir(), silent())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "erin", operation("2025-01-10", portfolio.Buy, "PETR4", 1, 10))
	assert.ErrorIs(t, err, context.Canceled)
}
