package core

import (
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"income", "INCOME", " expense "} {
		if _, err := ParseKind(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	if _, err := ParseKind("receita"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      1,
		Kind:        Income,
		Amount:      Money{Cents: 100},
		Description: "Salary",
		CreatedAt:   time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{UserID: 0, Kind: Income, Amount: Money{Cents: 1}, CreatedAt: time.Now()},
		{UserID: 1, Kind: "gift", Amount: Money{Cents: 1}, CreatedAt: time.Now()},
		{UserID: 1, Kind: Expense, Amount: Money{Cents: -1}, CreatedAt: time.Now()},
		{UserID: 1, Kind: Expense, Amount: Money{Cents: 1}, Description: strings.Repeat("x", MaxDescriptionLen+1), CreatedAt: time.Now()},
		{UserID: 1, Kind: Expense, Amount: Money{Cents: 1}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTotalsBalance(t *testing.T) {
	totals := Totals{Income: Money{Cents: 200000}, Expense: Money{Cents: 5000}}
	if got := totals.Balance(); got.Cents != 195000 {
		t.Fatalf("balance = %d, want 195000", got.Cents)
	}
	if got := (Totals{Expense: Money{Cents: 10}}).Balance(); !got.IsNegative() || got.Abs().Cents != 10 {
		t.Fatalf("unexpected negative balance: %+v", got)
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Kind: Income, Amount: Money{Cents: 10}}
	out := Transaction{Kind: Expense, Amount: Money{Cents: 10}}
	if in.Signed().Cents != 10 || out.Signed().Cents != -10 {
		t.Fatalf("unexpected signed amounts: %d %d", in.Signed().Cents, out.Signed().Cents)
	}
}
