// Package memory is an in-process LedgerExporter used as a test double.
package memory

import (
	"context"
	"sort"
	"sync"

	"finbot/internal/core"
	ports "finbot/internal/sheets"
)

var _ ports.LedgerExporter = (*Exporter)(nil)

type Exporter struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction
}

func New() *Exporter {
	return &Exporter{rows: make(map[int64]core.Transaction)}
}

func (e *Exporter) ExportTransaction(_ context.Context, tx core.Transaction) error {
	if tx.ID <= 0 {
		return core.ErrInvalidID
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[tx.ID]; !ok {
		e.rows[tx.ID] = tx
	}
	return nil
}

func (e *Exporter) RemoveTransaction(_ context.Context, txID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, txID)
	return nil
}

// Rows returns the exported transactions ordered by id.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Transaction, 0, len(e.rows))
	for _, tx := range e.rows {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
