package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
	applog "finbot/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// DSN builds a modernc sqlite data source with foreign keys enforced.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps concurrent handlers serialized on the file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite store ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) RegisterUser(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	err := r.queries.InsertUserIfAbsent(ctx, InsertUserIfAbsentParams{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		FirstSeen:   u.FirstSeen.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      tx.UserID,
		Kind:        tx.Kind.String(),
		AmountCents: tx.Amount.Cents,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		applog.NewFields().WithUser(tx.UserID).WithTransaction(id, tx.Kind.String(), tx.Amount.Cents).ToSlice()...)
	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, txID int64) (bool, error) {
	n, err := r.queries.DeleteTransaction(ctx, txID, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = ledger.DefaultListLimit
	}
	rows, err := r.queries.ListTransactions(ctx, userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toTransactions(rows)
}

func (r *SQLiteRepository) ListTransactionsSince(ctx context.Context, userID int64, since time.Time) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsSince(ctx, userID, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("list transactions since: %w", err)
	}
	return toTransactions(rows)
}

func (r *SQLiteRepository) Totals(ctx context.Context, userID int64) (core.Totals, error) {
	row, err := r.queries.GetTotals(ctx, userID)
	if err != nil {
		return core.Totals{}, fmt.Errorf("get totals: %w", err)
	}
	return core.Totals{
		Income:  core.Money{Cents: row.Income},
		Expense: core.Money{Cents: row.Expense},
	}, nil
}

func toTransactions(rows []TransactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		kind, err := core.ParseKind(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", row.ID, err)
		}
		out = append(out, core.Transaction{
			ID:          row.ID,
			UserID:      row.UserID,
			Kind:        kind,
			Amount:      core.Money{Cents: row.AmountCents},
			Description: row.Description,
			CreatedAt:   time.Unix(0, row.CreatedAt),
		})
	}
	return out, nil
}
