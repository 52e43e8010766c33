package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tells whether a transaction adds to or subtracts from the balance.
	Kind string

	Money struct {
		Cents int64
	}

	User struct {
		ID          int64
		DisplayName string
		FirstSeen   time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Kind        Kind
		Amount      Money
		Description string
		CreatedAt   time.Time
	}

	// Totals holds the per-kind sums of a user's ledger.
	Totals struct {
		Income  Money
		Expense Money
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidID        = errors.New("invalid transaction id")
	ErrInvalidUser      = errors.New("invalid user id")
	ErrUserNotFound     = errors.New("user not found")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrMissingTimestamp = errors.New("missing creation timestamp")
)

// MaxDescriptionLen bounds the stored description, in characters.
const MaxDescriptionLen = 200

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// Label is the human readable name of the kind, also used as the default description.
func (k Kind) Label() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return "Unknown"
	}
}

// ParseKind converts a stored kind back to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Validate checks the amount against the data-model boundary: never negative.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (u User) Validate() error {
	if u.ID == 0 {
		return ErrInvalidUser
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID == 0 {
		return ErrInvalidUser
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return ErrDescriptionLong
	}
	if t.CreatedAt.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// Signed returns the effect of the transaction on the balance.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

// Balance is income minus expense.
func (t Totals) Balance() Money {
	return t.Income.Sub(t.Expense)
}
