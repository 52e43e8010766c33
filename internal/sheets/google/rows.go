package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finbot/internal/core"
)

// Header is the first row of the ledger sheet. Column A always holds the
// transaction id, which is how rows are found again on delete.
var Header = []interface{}{"ID", "Date", "User", "Kind", "Amount", "Description"}

const (
	dateLayout  = "2006-01-02 15:04"
	lastColumn  = "F"
	idColumnRef = "A:A"
)

func transactionRow(tx core.Transaction, loc *time.Location) []interface{} {
	if loc == nil {
		loc = time.UTC
	}
	return []interface{}{
		tx.ID,
		tx.CreatedAt.In(loc).Format(dateLayout),
		tx.UserID,
		tx.Kind.String(),
		tx.Amount.String(),
		tx.Description,
	}
}

// findRowByID returns the 1-based sheet row whose first cell equals id, or 0.
func findRowByID(values [][]interface{}, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellID, ok := parseCellID(row[0]); ok && cellID == id {
			return i + 1
		}
	}
	return 0
}

func parseCellID(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case float64:
		return int64(t), t == float64(int64(t))
	case int64:
		return t, true
	default:
		return 0, false
	}
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, lastColumn, row)
}

func columnRange(sheet, cols string) string {
	return fmt.Sprintf("%s!%s", quoteSheet(sheet), cols)
}

// quoteSheet wraps names containing spaces or quotes in A1-notation quotes.
func quoteSheet(name string) string {
	if !strings.ContainsAny(name, " '!") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
