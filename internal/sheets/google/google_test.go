package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// fakeSheets is a tiny stand-in for the Sheets REST API holding one sheet.
type fakeSheets struct {
	mu   sync.Mutex
	rows [][]any

	appends      int
	inputOptions []string
	renderOption string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		values := f.rows
		if strings.HasSuffix(path, "!A:A") {
			values = make([][]any, len(f.rows))
			for i, row := range f.rows {
				values[i] = row[:1]
			}
		} else {
			f.renderOption = r.URL.Query().Get("valueRenderOption")
		}
		writeJSON(w, map[string]any{"range": "Transactions!A:F", "values": values})

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.inputOptions = append(f.inputOptions, r.URL.Query().Get("valueInputOption"))
		f.rows = append(vr.Values, f.rows...)
		writeJSON(w, map[string]any{"updatedRows": 1})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.appends++
		f.inputOptions = append(f.inputOptions, r.URL.Query().Get("valueInputOption"))
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows)
		writeJSON(w, map[string]any{"updates": map[string]any{"updatedRange": fmt.Sprintf("Transactions!A%d:F%d", n, n)}})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.DeleteDimension == nil || rq.DeleteDimension.Range.SheetId != 7 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			i := rq.DeleteDimension.Range.StartIndex
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sid"})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sid"):
		writeJSON(w, map[string]any{"sheets": []any{
			map[string]any{"properties": map[string]any{"sheetId": 1, "title": "Other"}},
			map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Transactions"}},
		}})

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := newClient(context.Background(), Config{SpreadsheetID: "sid"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, fake
}

func sampleTx(id, desc string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        core.Expense,
		Amount:      core.MoneyFromString("12.5"),
		Category:    core.CategoryRef{ID: "c1", Name: "Food"},
		Description: desc,
		Date:        core.NewDate(2025, 3, 9),
	}
}

func TestAppendWritesHeaderAndRow(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	ref, err := c.AppendTransaction(ctx, sampleTx("t1", "Lunch"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Transactions!A2:F2" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(fake.rows) != 2 || fake.rows[0][0] != "ID" {
		t.Fatalf("expected header and one row, got %v", fake.rows)
	}
	want := []any{"t1", "2025-03-09", "expense", "Food", "Lunch", "12.50"}
	for i, v := range want {
		if fake.rows[1][i] != v {
			t.Fatalf("cell %d = %v, want %v", i, fake.rows[1][i], v)
		}
	}

	if _, err := c.AppendTransaction(ctx, sampleTx("t1", "Lunch")); err != nil {
		t.Fatalf("duplicate append: %v", err)
	}
	if len(fake.rows) != 2 {
		t.Fatalf("duplicate append added a row: %v", fake.rows)
	}
}

func TestAppendGuardsFormulas(t *testing.T) {
	c, fake := newTestClient(t)
	if _, err := c.AppendTransaction(context.Background(), sampleTx("t1", "=HYPERLINK(\"x\")")); err != nil {
		t.Fatal(err)
	}
	if got := fake.rows[1][4]; got != "'=HYPERLINK(\"x\")" {
		t.Fatalf("description not guarded: %v", got)
	}

	txs, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Description != "=HYPERLINK(\"x\")" || txs[0].Category.Name != "Food" {
		t.Fatalf("unexpected read back %+v", txs)
	}
}

func TestDeleteByID(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := c.AppendTransaction(ctx, sampleTx(id, "")); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.DeleteTransaction(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.rows) != 3 || fake.rows[1][0] != "a" || fake.rows[2][0] != "c" {
		t.Fatalf("unexpected rows after delete %v", fake.rows)
	}
	if err := c.DeleteTransaction(ctx, "b"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendTransactionsWritesMissingRowsOnce(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	if _, err := c.AppendTransaction(ctx, sampleTx("a", "")); err != nil {
		t.Fatal(err)
	}
	fake.appends = 0

	n, err := c.AppendTransactions(ctx, []core.Transaction{
		sampleTx("a", ""), sampleTx("b", ""), sampleTx("c", ""), sampleTx("b", ""),
	})
	if err != nil {
		t.Fatalf("append batch: %v", err)
	}
	if n != 2 || fake.appends != 1 {
		t.Fatalf("expected 2 rows in one append, got %d rows in %d appends", n, fake.appends)
	}
	if len(fake.rows) != 4 || fake.rows[2][0] != "b" || fake.rows[3][0] != "c" {
		t.Fatalf("unexpected rows %v", fake.rows)
	}

	n, err = c.AppendTransactions(ctx, []core.Transaction{sampleTx("c", "")})
	if err != nil || n != 0 || fake.appends != 1 {
		t.Fatalf("known ids should not be written: n=%d appends=%d err=%v", n, fake.appends, err)
	}
	if _, err := c.AppendTransactions(ctx, []core.Transaction{{}}); err == nil {
		t.Fatal("expected error for a transaction without id")
	}
}

func TestRowsWrittenRawAndReadUnformatted(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	if _, err := c.AppendTransaction(ctx, sampleTx("t1", "")); err != nil {
		t.Fatal(err)
	}
	for _, opt := range fake.inputOptions {
		if opt != "RAW" {
			t.Fatalf("expected RAW writes, got %v", fake.inputOptions)
		}
	}
	if _, err := c.ListTransactions(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.renderOption != "UNFORMATTED_VALUE" {
		t.Fatalf("expected UNFORMATTED_VALUE read, got %q", fake.renderOption)
	}
}

func TestListTransactionsReadsSerialDates(t *testing.T) {
	c, fake := newTestClient(t)
	fake.rows = [][]any{
		{"ID", "Date", "Type", "Category", "Description", "Amount"},
		{"t1", 45725, "expense", "Food", "Lunch", 12.5},
		{"t2", "2025-03-10", "income", "Salary", "", "1000"},
		{"t3", "yesterday", "expense", "Food", "", "1"},
	}

	txs, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %+v", txs)
	}
	if got := txs[0].Date.String(); got != "2025-03-09" {
		t.Fatalf("serial date = %s, want 2025-03-09", got)
	}
	if got := txs[0].Amount.String(); got != "12.50" {
		t.Fatalf("amount = %s, want 12.50", got)
	}
	if txs[1].ID != "t2" || txs[1].Type != core.Income {
		t.Fatalf("unexpected second row %+v", txs[1])
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "sid"}); err == nil {
		t.Fatal("expected error without credentials")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "sid", CredentialsFile: "/does/not/exist.json"}); err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}
