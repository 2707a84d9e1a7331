// Package store persists ledgers of operations.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/arvowealth/portfolio"
	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// ErrNotFound is returned when deleting an unknown operation.
var ErrNotFound = errors.New("operation not found")

// ErrInvalidOwner is returned for owner names that cannot be a file name.
var ErrInvalidOwner = errors.New("invalid owner")

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

const ext = ".jsonl"

// File stores the ledger of each owner in a JSONL file named after the owner.
// It is safe for concurrent use.
type File struct {
	dir    string
	logger *log.Logger
	mu     sync.Mutex
}

// Open opens the store rooted at dir, creating the directory if needed. A
// nil logger discards everything.
func Open(dir string, logger *log.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
	}
	return &File{dir: dir, logger: logger}, nil
}

func (f *File) path(owner string) (string, error) {
	if !ownerPattern.MatchString(owner) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	return filepath.Join(f.dir, owner+ext), nil
}

// LoadOperations returns the operations of owner in insertion order. An
// owner without a ledger has no operations.
func (f *File) LoadOperations(ctx context.Context, owner string) ([]portfolio.Operation, error) {
	l, err := f.Ledger(ctx, owner)
	if err != nil {
		return nil, err
	}
	ops := make([]portfolio.Operation, 0, l.Len())
	for _, op := range l.Operations() {
		ops = append(ops, op)
	}
	return ops, nil
}

// Ledger returns the ledger of owner.
func (f *File) Ledger(ctx context.Context, owner string) (*portfolio.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(owner)
}

func (f *File) read(owner string) (*portfolio.Ledger, error) {
	path, err := f.path(owner)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return portfolio.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer file.Close()
	l, err := portfolio.DecodeLedger(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ledger %s: %w", path, err)
	}
	f.logger.Debug().Str("owner", owner).Int("operations", l.Len()).Msg("ledger loaded")
	return l, nil
}

// Save appends ops to the ledger of owner and returns them as stored:
// operations without an ID are given a new one. Operations in another
// currency than the ledger's are refused, nothing is then written.
func (f *File) Save(ctx context.Context, owner string, ops ...portfolio.Operation) ([]portfolio.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.path(owner)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, err := f.read(owner)
	if err != nil {
		return nil, err
	}
	saved := slices.Clone(ops)
	var buf bytes.Buffer
	for i := range saved {
		if err := l.CheckCurrency(saved[i]); err != nil {
			return nil, fmt.Errorf("refusing %s in ledger of %s: %w", saved[i], owner, err)
		}
		if saved[i].ID == "" {
			saved[i].ID = uuid.NewString()
		}
		if err := portfolio.EncodeOperation(&buf, saved[i]); err != nil {
			return nil, err
		}
		l.Append(saved[i])
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write ledger %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ledger %s: %w", path, err)
	}
	f.logger.Info().Str("owner", owner).Int("operations", len(saved)).Msg("operations saved")
	return saved, nil
}

// Delete removes the operation id from the ledger of owner. The ledger file
// is replaced atomically.
func (f *File) Delete(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	l, err := f.read(owner)
	if err != nil {
		return err
	}
	l, found := l.Without(id)
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	path, _ := f.path(owner)

	tmp, err := os.CreateTemp(f.dir, owner+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := portfolio.EncodeLedger(tmp, l); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temporary ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace ledger %s: %w", path, err)
	}
	f.logger.Info().Str("owner", owner).Str("id", id).Msg("operation deleted")
	return nil
}

// Owners returns the owners having a ledger, in lexical order.
func (f *File) Owners() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	var owners []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ext); ok && !e.IsDir() {
			owners = append(owners, name)
		}
	}
	slices.Sort(owners)
	return owners, nil
}

var _ portfolio.OperationLoader = (*File)(nil)
