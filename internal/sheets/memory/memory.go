// Package memory is an in-process transaction mirror for tests and for
// running the worker without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var (
	_ sheets.TransactionMirror = (*Store)(nil)
	_ sheets.TransactionLister = (*Store)(nil)
	_ sheets.Mirror            = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// AppendTransaction stores tx and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", fmt.Errorf("transaction has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == tx.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) AppendTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.items))
	for _, it := range s.items {
		seen[it.ID] = true
	}
	var fresh []core.Transaction
	for _, tx := range txs {
		if tx.ID == "" {
			return 0, fmt.Errorf("transaction has no id")
		}
		if !seen[tx.ID] {
			seen[tx.ID] = true
			fresh = append(fresh, tx)
		}
	}
	s.items = append(s.items, fresh...)
	return len(fresh), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sheets.ErrNotFound
}

// ListTransactions returns a copy of the mirrored rows in insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}
