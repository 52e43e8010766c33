package sheets

import (
	"context"

	"finbot/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter mirrors ledger changes into an external spreadsheet.
	// Both operations are idempotent: a redelivered event leaves the sheet unchanged.
	LedgerExporter interface {
		ExportTransaction(ctx context.Context, tx core.Transaction) error
		RemoveTransaction(ctx context.Context, txID int64) error
	}
)
