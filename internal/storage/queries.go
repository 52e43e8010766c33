package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type TransactionRow struct {
	ID          int64
	UserID      int64
	Kind        string
	AmountCents int64
	Description string
	CreatedAt   int64
}

const insertUserIfAbsent = `-- name: InsertUserIfAbsent :exec
INSERT INTO users (id, display_name, first_seen) VALUES (?, ?, ?)
ON CONFLICT (id) DO NOTHING
`

type InsertUserIfAbsentParams struct {
	ID          int64
	DisplayName string
	FirstSeen   int64
}

func (q *Queries) InsertUserIfAbsent(ctx context.Context, arg InsertUserIfAbsentParams) error {
	_, err := q.db.ExecContext(ctx, insertUserIfAbsent, arg.ID, arg.DisplayName, arg.FirstSeen)
	return err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (user_id, kind, amount_cents, description, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	UserID      int64
	Kind        string
	AmountCents int64
	Description string
	CreatedAt   int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID, arg.Kind, arg.AmountCents, arg.Description, arg.CreatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, user_id, kind, amount_cents, description, created_at
FROM transactions
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListTransactions(ctx context.Context, userID, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const listTransactionsSince = `-- name: ListTransactionsSince :many
SELECT id, user_id, kind, amount_cents, description, created_at
FROM transactions
WHERE user_id = ? AND created_at >= ?
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListTransactionsSince(ctx context.Context, userID, since int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsSince, userID, since)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const getTotals = `-- name: GetTotals :one
SELECT
    CAST(COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0) AS INTEGER) AS income,
    CAST(COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0) AS INTEGER) AS expense
FROM transactions
WHERE user_id = ?
`

type GetTotalsRow struct {
	Income  int64
	Expense int64
}

func (q *Queries) GetTotals(ctx context.Context, userID int64) (GetTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getTotals, userID)
	var i GetTotalsRow
	err := row.Scan(&i.Income, &i.Expense)
	return i, err
}

func scanTransactions(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Kind, &i.AmountCents, &i.Description, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
