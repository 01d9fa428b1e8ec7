// Package google mirrors transactions into a Google Sheet, one row per
// transaction keyed by the id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	ports "fintrack/internal/sheets"
)

// Ensure interface conformance
var (
	_ ports.TransactionMirror = (*Client)(nil)
	_ ports.TransactionLister = (*Client)(nil)
	_ ports.Mirror            = (*Client)(nil)
)

// sheetsEpoch is day zero of spreadsheet date serial numbers.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const DefaultSheetName = "Transactions"

type Config struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsJSON wins over CredentialsFile when both are set.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// New creates a Sheets client authenticated with a service account. Extra
// options are passed to the Sheets service after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := credentialOptions(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, cfg, append(creds, opts...)...)
}

func newClient(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        log.New(log.Config{Component: log.ComponentSheets, Handler: slog.Default().Handler()}),
	}, nil
}

func credentialOptions(cfg Config) ([]goption.ClientOption, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// AppendTransaction adds a row for tx unless its id is already present.
// Text cells are guarded against formula injection.
func (c *Client) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", errors.New("transaction has no id")
	}
	ids, err := c.idColumn(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		if err := c.writeHeader(ctx); err != nil {
			return "", err
		}
	}
	if row := indexOf(ids, tx.ID); row >= 0 {
		c.logger.DebugContext(ctx, "Transaction already mirrored", log.FieldTxID, tx.ID)
		return fmt.Sprintf("%s!A%d", c.sheet, row+1), nil
	}

	ref, err := c.appendRows(ctx, [][]any{rowFor(tx)})
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Transaction mirrored", log.FieldTxID, tx.ID, "range", ref)
	return ref, nil
}

// AppendTransactions adds a row for every transaction whose id is not in
// the sheet yet, reading the id column once and writing all rows in one
// append.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	ids, err := c.idColumn(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[unguard(id)] = true
	}

	var rows [][]any
	for _, tx := range txs {
		if tx.ID == "" {
			return 0, errors.New("transaction has no id")
		}
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		rows = append(rows, rowFor(tx))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if len(ids) == 0 {
		if err := c.writeHeader(ctx); err != nil {
			return 0, err
		}
	}
	ref, err := c.appendRows(ctx, rows)
	if err != nil {
		return 0, err
	}
	c.logger.InfoContext(ctx, "Transactions mirrored", "rows", len(rows), "range", ref)
	return len(rows), nil
}

// appendRows writes rows RAW so dates and amounts stay the text we wrote
// and read back unchanged.
func (c *Client) appendRows(ctx context.Context, rows [][]any) (string, error) {
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheet+"!A:F", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}
	ref := c.sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// DeleteTransaction removes the row whose id cell equals id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ids, err := c.idColumn(ctx)
	if err != nil {
		return err
	}
	row := indexOf(ids, id)
	if row < 0 {
		return ports.ErrNotFound
	}
	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row),
					EndIndex:   int64(row + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", row+1, c.sheet, err)
	}
	c.logger.InfoContext(ctx, "Transaction removed from mirror", log.FieldTxID, id, "row", row+1)
	return nil
}

// ListTransactions reads back every mirrored row. Rows that do not parse
// are skipped.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheet+"!A:F").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.sheet, err)
	}
	var out []core.Transaction
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && len(cols) > 0 && strings.EqualFold(cols[0], ports.Header[0]) {
			continue
		}
		tx, ok := parseRow(cols)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) idColumn(ctx context.Context) ([]string, error) {
	rng := c.sheet + "!A:A"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			ids[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return ids, nil
}

func (c *Client) writeHeader(ctx context.Context) error {
	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheet+"!A1:F1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header in sheet %s: %w", c.sheet, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet properties: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheet {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheet)
}

func rowFor(tx core.Transaction) []any {
	return []any{
		security.SanitizeForSpreadsheet(tx.ID),
		tx.Date.String(),
		string(tx.Type),
		security.SanitizeForSpreadsheet(tx.Category.Label()),
		security.SanitizeForSpreadsheet(tx.Description),
		tx.Amount.String(),
	}
}

func parseRow(cols []string) (core.Transaction, bool) {
	if len(cols) < 6 || cols[0] == "" {
		return core.Transaction{}, false
	}
	date, ok := parseDateCell(cols[1])
	if !ok {
		return core.Transaction{}, false
	}
	typ, err := core.ParseTxType(cols[2])
	if err != nil {
		return core.Transaction{}, false
	}
	amount, err := core.ParseMoney(cols[5])
	if err != nil {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ID:          unguard(cols[0]),
		Date:        date,
		Type:        typ,
		Category:    core.CategoryRef{Name: unguard(cols[3])},
		Description: unguard(cols[4]),
		Amount:      amount,
	}, true
}

// parseDateCell accepts the YYYY-MM-DD text we write and the serial number
// Sheets returns when someone turned the cell into a real date.
func parseDateCell(s string) (core.Date, bool) {
	if d, err := core.ParseDate(s); err == nil {
		return d, true
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 1 {
		return core.Date{}, false
	}
	t := sheetsEpoch.AddDate(0, 0, int(serial))
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
}

// unguard drops the quote SanitizeForSpreadsheet adds to risky text.
func unguard(s string) string {
	if len(s) > 1 && s[0] == '\'' {
		switch s[1] {
		case '=', '+', '-', '@', '\t', '\r':
			return s[1:]
		}
	}
	return s
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if f, ok := v.(float64); ok {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(ids []string, target string) int {
	target = strings.TrimSpace(target)
	for i, v := range ids {
		if v == target || unguard(v) == target {
			return i
		}
	}
	return -1
}
