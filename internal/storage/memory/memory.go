// Package memory is a process-local ledger store used by the memory backend
// and by tests. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	users  map[int64]core.User
	items  []core.Transaction
	nextID int64
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{users: make(map[int64]core.User)}
}

// RegisterUser keeps the first registration of an id.
func (s *Store) RegisterUser(_ context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.users[u.ID] = u
	}
	return nil
}

// AddTransaction stores tx under the next id.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[tx.UserID]; !ok {
		return 0, fmt.Errorf("add transaction for user %d: %w", tx.UserID, core.ErrUserNotFound)
	}
	s.nextID++
	tx.ID = s.nextID
	s.items = append(s.items, tx)
	return tx.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, txID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == txID && tx.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = ledger.DefaultListLimit
	}
	out := s.filter(func(tx core.Transaction) bool { return tx.UserID == userID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListTransactionsSince(_ context.Context, userID int64, since time.Time) ([]core.Transaction, error) {
	return s.filter(func(tx core.Transaction) bool {
		return tx.UserID == userID && !tx.CreatedAt.Before(since)
	}), nil
}

func (s *Store) Totals(_ context.Context, userID int64) (core.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t core.Totals
	for _, tx := range s.items {
		if tx.UserID != userID {
			continue
		}
		if tx.Kind == core.Income {
			t.Income = t.Income.Add(tx.Amount)
		} else {
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// filter returns matching transactions newest first.
func (s *Store) filter(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
