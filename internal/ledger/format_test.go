package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"finbot/internal/core"
)

func TestFormatter_Money(t *testing.T) {
	f := NewFormatter("R$", time.UTC)
	assert.Equal(t, "R$1950.00", f.Money(core.Money{Cents: 195000}))
	assert.Equal(t, "-R$50.00", f.Money(core.Money{Cents: -5000}))
	assert.Equal(t, "R$0.00", f.Money(core.Money{}))
	assert.Equal(t, "$0.05", NewFormatter("$", nil).Money(core.Money{Cents: 5}))
}

func TestFormatter_Transactions(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	f := NewFormatter("R$", loc)

	assert.Equal(t, NoTransactionsMessage, f.Transactions(nil))

	txs := []core.Transaction{
		{ID: 2, Kind: core.Expense, Amount: core.Money{Cents: 5000}, Description: "lunch",
			CreatedAt: time.Date(2024, 6, 10, 15, 4, 0, 0, time.UTC)},
		{ID: 1, Kind: core.Income, Amount: core.Money{Cents: 200000}, Description: "salary",
			CreatedAt: time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)},
	}
	want := "2. 10/06 12:04 — 📉 Expense: R$50.00 — lunch\n" +
		"1. 31/05 23:00 — 📈 Income: R$2000.00 — salary"
	assert.Equal(t, want, f.Transactions(txs))
}
