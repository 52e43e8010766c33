// Package worker mirrors ledger events into the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/amqp"
	applog "finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/sheets"
)

// Consumer delivers ledger events to a handler until ctx is done.
type Consumer interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// SyncWorker applies ledger events to a LedgerExporter.
type SyncWorker struct {
	exporter sheets.LedgerExporter
	metrics  *metrics.Metrics
	logger   *applog.Logger
}

func NewSyncWorker(exporter sheets.LedgerExporter, m *metrics.Metrics, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		exporter: exporter,
		metrics:  m,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Run consumes events until ctx is cancelled. Cancellation is a clean stop.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Sync worker started")
	err := consumer.ConsumeTransactionEvents(ctx, w.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("consume ledger events: %w", err)
	}
	w.logger.Info("Sync worker stopped")
	return nil
}

// HandleEvent processes a single ledger event. A returned error makes the
// broker redeliver it.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if event == nil {
		return nil
	}
	log := w.logger.With(
		applog.FieldEventType, string(event.Type),
		applog.FieldTxID, event.TxID,
		applog.FieldUserID, event.UserID)
	log.DebugContext(ctx, "Processing ledger event", "event_id", event.EventID)

	var err error
	switch event.Type {
	case amqp.EventTransactionRecorded:
		err = w.exporter.ExportTransaction(ctx, event.Transaction())
	case amqp.EventTransactionDeleted:
		err = w.exporter.RemoveTransaction(ctx, event.TxID)
	default:
		log.WarnContext(ctx, "Ignoring unknown event type")
		return nil
	}

	if err != nil {
		w.metrics.Export(string(event.Type), metrics.OutcomeError)
		log.ErrorContext(ctx, "Failed to sync ledger event", applog.FieldError, err)
		return fmt.Errorf("sync %s %d: %w", event.Type, event.TxID, err)
	}
	w.metrics.Export(string(event.Type), metrics.OutcomeOK)
	log.InfoContext(ctx, "Synced ledger event")
	return nil
}
