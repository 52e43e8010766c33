package ledger

import (
	"strconv"
	"strings"
	"time"

	"finbot/internal/core"
)

// NoTransactionsMessage is rendered for an empty list.
const NoTransactionsMessage = "No transactions found."

const dateLayout = "02/01 15:04"

// Formatter renders amounts and transaction lists for chat replies.
type Formatter struct {
	Currency string
	Location *time.Location
}

func NewFormatter(currency string, loc *time.Location) Formatter {
	if loc == nil {
		loc = time.Local
	}
	return Formatter{Currency: currency, Location: loc}
}

// Money renders m with the currency symbol and exactly two decimals,
// e.g. "R$1950.00" or "-R$50.00".
func (f Formatter) Money(m core.Money) string {
	if m.IsNegative() {
		return "-" + f.Currency + m.Abs().String()
	}
	return f.Currency + m.String()
}

// KindLabel pairs the kind with its icon.
func (f Formatter) KindLabel(k core.Kind) string {
	if k == core.Income {
		return "📈 " + k.Label()
	}
	return "📉 " + k.Label()
}

// Transaction renders one line: "<id>. <dd/mm HH:MM> — <kind>: <amount> — <description>".
func (f Formatter) Transaction(tx core.Transaction) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(tx.ID, 10))
	b.WriteString(". ")
	b.WriteString(tx.CreatedAt.In(f.location()).Format(dateLayout))
	b.WriteString(" — ")
	b.WriteString(f.KindLabel(tx.Kind))
	b.WriteString(": ")
	b.WriteString(f.Money(tx.Amount))
	b.WriteString(" — ")
	b.WriteString(tx.Description)
	return b.String()
}

// Transactions renders txs in the given order, one per line.
func (f Formatter) Transactions(txs []core.Transaction) string {
	if len(txs) == 0 {
		return NoTransactionsMessage
	}
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = f.Transaction(tx)
	}
	return strings.Join(lines, "\n")
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}
