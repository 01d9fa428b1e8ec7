package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

func TestAppendIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx := core.Transaction{ID: "t1", Type: core.Expense, Amount: core.MoneyFromString("4.20")}

	ref1, err := s.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatal(err)
	}
	ref2, err := s.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatal(err)
	}
	if ref1 != ref2 {
		t.Fatalf("expected same row for duplicate append, got %s and %s", ref1, ref2)
	}
	items, _ := s.ListTransactions(ctx)
	if len(items) != 1 {
		t.Fatalf("expected 1 row, got %d", len(items))
	}

	if _, err := s.AppendTransaction(ctx, core.Transaction{}); err == nil {
		t.Fatal("expected error for transaction without id")
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.AppendTransaction(ctx, core.Transaction{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteTransaction(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTransaction(ctx, "b"); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	items, _ := s.ListTransactions(ctx)
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("unexpected rows %+v", items)
	}
}

func TestAppendTransactionsSkipsKnownIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.AppendTransaction(ctx, core.Transaction{ID: "a"}); err != nil {
		t.Fatal(err)
	}

	n, err := s.AppendTransactions(ctx, []core.Transaction{{ID: "a"}, {ID: "b"}, {ID: "b"}, {ID: "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 new rows, got %d", n)
	}
	if _, err := s.AppendTransactions(ctx, []core.Transaction{{ID: "d"}, {}}); err == nil {
		t.Fatal("expected error for transaction without id")
	}
	items, _ := s.ListTransactions(ctx)
	if len(items) != 3 {
		t.Fatalf("a rejected batch must not be partly written, got %+v", items)
	}
}
