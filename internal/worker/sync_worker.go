// Package worker applies transaction events to the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// Consumer delivers events to a handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// TransactionSource lists the transactions the mirror should contain.
type TransactionSource interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

type Stats struct {
	Appended int64
	Deleted  int64
	Skipped  int64
}

// SyncWorker keeps a sheets.Mirror in step with the events the front-end
// publishes.
type SyncWorker struct {
	mirror sheets.Mirror
	logger *log.Logger

	appended int64
	deleted  int64
	skipped  int64
}

func NewSyncWorker(mirror sheets.Mirror, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker, Handler: slog.Default().Handler()})
	}
	return &SyncWorker{mirror: mirror, logger: logger}
}

// Run consumes events until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Sync worker started")
	err := c.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	st := w.Stats()
	w.logger.InfoContext(ctx, "Sync worker stopped",
		"appended", st.Appended,
		"deleted", st.Deleted,
		"skipped", st.Skipped)
	return err
}

// HandleEvent applies one event. A returned error asks for redelivery.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if err := ev.Validate(); err != nil {
		atomic.AddInt64(&w.skipped, 1)
		w.logger.WarnContext(ctx, "Dropping invalid event", log.FieldError, err.Error())
		return nil
	}

	switch ev.Kind {
	case amqp.TransactionCreated:
		ref, err := w.mirror.AppendTransaction(ctx, *ev.Transaction)
		if err != nil {
			return fmt.Errorf("mirror transaction %s: %w", ev.TransactionID, err)
		}
		atomic.AddInt64(&w.appended, 1)
		w.logger.InfoContext(ctx, "Transaction synced",
			log.FieldTxID, ev.TransactionID,
			log.FieldOperation, log.OpSync,
			"sheets_ref", ref)

	case amqp.TransactionDeleted:
		err := w.mirror.DeleteTransaction(ctx, ev.TransactionID)
		if errors.Is(err, sheets.ErrNotFound) {
			atomic.AddInt64(&w.skipped, 1)
			w.logger.InfoContext(ctx, "Deleted transaction was not mirrored", log.FieldTxID, ev.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("remove transaction %s: %w", ev.TransactionID, err)
		}
		atomic.AddInt64(&w.deleted, 1)
		w.logger.InfoContext(ctx, "Transaction removed", log.FieldTxID, ev.TransactionID, log.FieldOperation, log.OpDelete)
	}
	return nil
}

// Reconcile makes the mirror match src: transactions the mirror lacks are
// appended in one batch and rows whose id src no longer lists are removed.
// Mirror rows that cannot be parsed are left alone.
func (w *SyncWorker) Reconcile(ctx context.Context, src TransactionSource) error {
	want, err := src.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	have, err := w.mirror.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list mirror rows: %w", err)
	}

	mirrored := make(map[string]bool, len(have))
	for _, tx := range have {
		mirrored[tx.ID] = true
	}
	wanted := make(map[string]bool, len(want))
	var (
		missing []core.Transaction
		failed  int
	)
	for _, tx := range want {
		if tx.ID == "" {
			failed++
			w.logger.WarnContext(ctx, "Transaction without id cannot be mirrored")
			continue
		}
		wanted[tx.ID] = true
		if !mirrored[tx.ID] {
			missing = append(missing, tx)
		}
	}

	var appended int
	if len(missing) > 0 {
		appended, err = w.mirror.AppendTransactions(ctx, missing)
		if err != nil {
			failed += len(missing)
			w.logger.ErrorContext(ctx, "Failed to append missing transactions", "count", len(missing), log.FieldError, err.Error())
		}
		atomic.AddInt64(&w.appended, int64(appended))
	}

	var removed int
	for _, tx := range have {
		if wanted[tx.ID] {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := w.mirror.DeleteTransaction(ctx, tx.ID)
		switch {
		case errors.Is(err, sheets.ErrNotFound):
		case err != nil:
			failed++
			w.logger.ErrorContext(ctx, "Failed to remove stale row", log.FieldTxID, tx.ID, log.FieldError, err.Error())
		default:
			removed++
			atomic.AddInt64(&w.deleted, 1)
		}
	}

	w.logger.InfoContext(ctx, "Reconcile completed",
		"total", len(want),
		"appended", appended,
		"removed", removed,
		"errors", failed)
	if failed > 0 {
		return fmt.Errorf("%d transactions not reconciled", failed)
	}
	return nil
}

func (w *SyncWorker) Stats() Stats {
	return Stats{
		Appended: atomic.LoadInt64(&w.appended),
		Deleted:  atomic.LoadInt64(&w.deleted),
		Skipped:  atomic.LoadInt64(&w.skipped),
	}
}
