// Package worker drains the transaction export feed: change events arrive
// over AMQP, rows land in the CSV feed, and a periodic scan catches
// anything a lost message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionStore is the storage surface the worker needs.
type TransactionStore interface {
	GetTransactionByID(ctx context.Context, id string) (core.Transaction, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// FeedWriter appends one transaction to the export feed.
type FeedWriter interface {
	Append(ctx context.Context, t core.Transaction) error
}

type ExportWorker struct {
	store     TransactionStore
	feed      FeedWriter
	batchSize int
	logger    *log.Logger
}

func NewExportWorker(store TransactionStore, feed FeedWriter, batchSize int, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:     store,
		feed:      feed,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionEvent processes one change event. Deletes have nothing
// to export; a row deleted between the event and the lookup is skipped.
func (w *ExportWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	if msg.Action == amqp.ActionDeleted {
		w.logger.DebugContext(ctx, "skipping deleted transaction", log.FieldTxnID, msg.ID)
		return nil
	}

	txn, err := w.store.GetTransactionByID(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "transaction gone before export", log.FieldTxnID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	return w.export(ctx, txn)
}

// ProcessPending exports transactions still marked pending. This is the
// backup path for lost or unacked messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "processing pending exports", "count", len(pending))
	for _, txn := range pending {
		if err := w.export(ctx, txn); err != nil {
			w.logger.ErrorContext(ctx, "failed to export transaction",
				log.FieldTxnID, txn.ID, log.FieldError, err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once, recovering from
// worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending export for startup check: %w", err)
	}
	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "no pending exports on startup")
		return nil
	}

	w.logger.InfoContext(ctx, "found pending exports on startup", "count", len(pending))
	exported, failed := 0, 0
	for _, txn := range pending {
		if err := w.export(ctx, txn); err != nil {
			w.logger.ErrorContext(ctx, "startup export failed",
				log.FieldTxnID, txn.ID, log.FieldError, err)
			failed++
			continue
		}
		exported++
	}
	w.logger.InfoContext(ctx, "startup export check completed",
		"total", len(pending), "exported", exported, "errors", failed)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, txn core.Transaction) error {
	if err := w.feed.Append(ctx, txn); err != nil {
		if markErr := w.store.MarkExportError(ctx, txn.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "failed to mark export error",
				log.FieldTxnID, txn.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to feed: %w", err)
	}

	if err := w.store.MarkExported(ctx, txn.ID); err != nil {
		// The row is in the feed; the mark catches up on the next scan.
		w.logger.ErrorContext(ctx, "failed to mark exported",
			log.FieldTxnID, txn.ID, log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "transaction exported",
		log.FieldTxnID, txn.ID,
		log.FieldAmountCents, txn.Amount.Cents)
	return nil
}
