package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finance_bot.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func register(t *testing.T, repo *SQLiteRepository, id int64) {
	t.Helper()
	require.NoError(t, repo.RegisterUser(context.Background(), core.User{ID: id, DisplayName: "user", FirstSeen: time.Now()}))
}

func addTx(t *testing.T, repo *SQLiteRepository, userID int64, kind core.Kind, cents int64, at time.Time) int64 {
	t.Helper()
	id, err := repo.AddTransaction(context.Background(), core.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      core.Money{Cents: cents},
		Description: kind.Label(),
		CreatedAt:   at,
	})
	require.NoError(t, err)
	return id
}

func TestSQLiteRepository_RegisterUserIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	require.NoError(t, repo.RegisterUser(ctx, core.User{ID: 42, DisplayName: "Ana", FirstSeen: first}))
	require.NoError(t, repo.RegisterUser(ctx, core.User{ID: 42, DisplayName: "Other", FirstSeen: first.Add(time.Hour)}))

	var (
		name      string
		firstSeen int64
		count     int
	)
	require.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT display_name, first_seen, (SELECT COUNT(*) FROM users) FROM users WHERE id = ?`, 42).
		Scan(&name, &firstSeen, &count))
	assert.Equal(t, "Ana", name)
	assert.Equal(t, first.UnixNano(), firstSeen)
	assert.Equal(t, 1, count)
}

func TestSQLiteRepository_TransactionRequiresUser(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.AddTransaction(context.Background(), core.Transaction{
		UserID: 99, Kind: core.Income, Amount: core.Money{Cents: 100}, CreatedAt: time.Now(),
	})
	assert.Error(t, err)
}

func TestSQLiteRepository_RoundTripAndTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	register(t, repo, 1)
	register(t, repo, 2)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id1 := addTx(t, repo, 1, core.Income, 200000, base)
	id2 := addTx(t, repo, 1, core.Expense, 5000, base.Add(time.Minute))
	addTx(t, repo, 2, core.Expense, 999, base.Add(2*time.Minute))
	assert.Greater(t, id2, id1)

	totals, err := repo.Totals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(195000), totals.Balance().Cents)

	totals, err = repo.Totals(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.Balance().Cents)

	txs, err := repo.ListTransactions(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, id2, txs[0].ID)
	assert.Equal(t, core.Expense, txs[0].Kind)
	assert.Equal(t, int64(5000), txs[0].Amount.Cents)
	assert.True(t, base.Add(time.Minute).Equal(txs[0].CreatedAt))
	assert.Equal(t, id1, txs[1].ID)
}

func TestSQLiteRepository_DeleteIsScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	register(t, repo, 1)
	register(t, repo, 2)
	id := addTx(t, repo, 1, core.Expense, 5000, time.Now())

	removed, err := repo.DeleteTransaction(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.DeleteTransaction(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteTransaction(ctx, 1, id)
	require.NoError(t, err)
	assert.False(t, removed)

	// Ids are never reused after a delete.
	next := addTx(t, repo, 1, core.Income, 100, time.Now())
	assert.Greater(t, next, id)
}

func TestSQLiteRepository_ListLimitAndSince(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	register(t, repo, 1)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		addTx(t, repo, 1, core.Income, int64(100+i), base.Add(time.Duration(i)*time.Hour))
	}

	txs, err := repo.ListTransactions(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, int64(104), txs[0].Amount.Cents)
	assert.Equal(t, int64(102), txs[2].Amount.Cents)

	since, err := repo.ListTransactionsSince(ctx, 1, base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, int64(104), since[0].Amount.Cents)
	assert.Equal(t, int64(103), since[1].Amount.Cents)
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.RegisterUser(context.Background(), core.User{ID: 5, FirstSeen: time.Now()}))
	_, err = repo.AddTransaction(context.Background(), core.Transaction{
		UserID: 5, Kind: core.Income, Amount: core.Money{Cents: 700}, Description: "x", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	defer repo.Close()

	totals, err := repo.Totals(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(700), totals.Income.Cents)
	require.NoError(t, repo.Ping(context.Background()))
}

func TestSQLiteRepository_PathWithSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my data", "finance bot.db")
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.RegisterUser(context.Background(), core.User{ID: 9, FirstSeen: time.Now()}))
	_, err = repo.AddTransaction(context.Background(), core.Transaction{
		UserID: 9, Kind: core.Expense, Amount: core.Money{Cents: 250}, Description: "coffee", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	defer repo.Close()

	totals, err := repo.Totals(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(250), totals.Expense.Cents)
}
