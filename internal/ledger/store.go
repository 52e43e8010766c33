// Package ledger implements the per-user accounting model: recording and
// deleting transactions, balances and statement windows, on top of a Store.
package ledger

import (
	"context"
	"time"

	"finbot/internal/core"
)

// DefaultListLimit caps ListTransactions when the caller passes no limit.
const DefaultListLimit = 100

// Store persists users and their transactions. Implementations must assign
// strictly increasing transaction ids and return lists newest first.
type Store interface {
	// RegisterUser inserts the user only if absent.
	RegisterUser(ctx context.Context, u core.User) error
	AddTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	// DeleteTransaction reports whether a row owned by userID was removed.
	DeleteTransaction(ctx context.Context, userID, txID int64) (bool, error)
	ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
	ListTransactionsSince(ctx context.Context, userID int64, since time.Time) ([]core.Transaction, error)
	Totals(ctx context.Context, userID int64) (core.Totals, error)
}

// EventPublisher receives ledger changes after they are committed.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, userID, txID int64) error
}
