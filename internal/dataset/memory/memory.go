package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"txdash/internal/core"
	"txdash/internal/dataset"
)

var _ dataset.Source = (*Store)(nil)

// Store serves a fixed in-memory dataset. It is the fixture source for tests
// and for running without network access.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
	err   error
}

func New(items []core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), items...)}
}

// NewFromFile loads a JSON array of transactions in the dataset's own format.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	items, err := dataset.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &Store{items: items}, nil
}

// FetchAll returns a copy of the stored transactions, or the configured failure.
func (s *Store) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]core.Transaction(nil), s.items...), nil
}

// FailWith makes subsequent fetches return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
