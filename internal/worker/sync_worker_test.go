package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets/memory"
)

func quiet() *log.Logger {
	return log.New(log.Config{Component: log.ComponentWorker, Handler: log.NewHandler(io.Discard, slog.LevelError, "text")})
}

// replay delivers a fixed list of events, stopping at the first handler error.
type replay struct {
	events []*amqp.TransactionEvent
}

func (r replay) Consume(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error {
	for _, ev := range r.events {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return context.Canceled
}

type listSource []core.Transaction

func (l listSource) ListTransactions(context.Context) ([]core.Transaction, error) { return l, nil }

type failingSource struct{}

func (failingSource) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("api down")
}

func tx(id string) core.Transaction {
	return core.Transaction{ID: id, Type: core.Income, Amount: core.MoneyFromString("100"), Date: core.NewDate(2025, 1, 1)}
}

func TestRunAppliesEvents(t *testing.T) {
	mirror := memory.New()
	w := NewSyncWorker(mirror, quiet())

	events := []*amqp.TransactionEvent{
		amqp.NewTransactionCreated(tx("a")),
		amqp.NewTransactionCreated(tx("b")),
		amqp.NewTransactionCreated(tx("a")),
		amqp.NewTransactionDeleted("b"),
		amqp.NewTransactionDeleted("missing"),
		{Kind: "transaction.renamed", TransactionID: "a"},
	}
	if err := w.Run(context.Background(), replay{events: events}); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows, _ := mirror.ListTransactions(context.Background())
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("unexpected mirror rows %+v", rows)
	}
	st := w.Stats()
	if st.Appended != 3 || st.Deleted != 1 || st.Skipped != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

// countingMirror records how the worker talks to the mirror.
type countingMirror struct {
	*memory.Store
	lists, batches, singles int
}

func (m *countingMirror) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	m.lists++
	return m.Store.ListTransactions(ctx)
}

func (m *countingMirror) AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	m.batches++
	return m.Store.AppendTransactions(ctx, txs)
}

func (m *countingMirror) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	m.singles++
	return m.Store.AppendTransaction(ctx, tx)
}

func TestReconcileFillsGaps(t *testing.T) {
	ctx := context.Background()
	mirror := &countingMirror{Store: memory.New()}
	if _, err := mirror.Store.AppendTransaction(ctx, tx("a")); err != nil {
		t.Fatal(err)
	}
	w := NewSyncWorker(mirror, quiet())

	if err := w.Reconcile(ctx, listSource{tx("a"), tx("b"), tx("c")}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	rows, _ := mirror.Store.ListTransactions(ctx)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if mirror.lists != 1 || mirror.batches != 1 || mirror.singles != 0 {
		t.Fatalf("expected one read and one batch append, got %+v", mirror)
	}
	if st := w.Stats(); st.Appended != 2 {
		t.Fatalf("expected 2 appended, got %+v", st)
	}

	mirror.lists, mirror.batches = 0, 0
	if err := w.Reconcile(ctx, listSource{tx("a"), tx("b"), tx("c")}); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if mirror.batches != 0 {
		t.Fatal("nothing missing, nothing should be written")
	}

	if err := w.Reconcile(ctx, failingSource{}); err == nil {
		t.Fatal("expected error when the source fails")
	}
	if err := w.Reconcile(ctx, listSource{tx("a"), tx("b"), tx("c"), {}}); err == nil {
		t.Fatal("expected error for a transaction without id")
	}
}

func TestReconcileRemovesStaleRows(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := mirror.AppendTransaction(ctx, tx(id)); err != nil {
			t.Fatal(err)
		}
	}
	w := NewSyncWorker(mirror, quiet())

	if err := w.Reconcile(ctx, listSource{tx("a"), tx("d")}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	rows, _ := mirror.ListTransactions(ctx)
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "d" {
		t.Fatalf("expected rows [a d], got %v", ids)
	}
	if st := w.Stats(); st.Appended != 1 || st.Deleted != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
