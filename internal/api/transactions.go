package api

import (
	"context"
	"net/http"
	"net/url"

	"fintrack/internal/core"
)

type NewTransaction struct {
	Description string      `json:"description"`
	Amount      core.Money  `json:"amount"`
	Type        core.TxType `json:"type"`
	Category    string      `json:"category"`
	Date        core.Date   `json:"date"`
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var recs []transactionRecord
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions",
		what:     "transaction list",
		fallback: "failed to load transactions",
	}, &recs)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, r := range recs {
		tx, err := r.toTransaction()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, nt NewTransaction) (core.Transaction, error) {
	var rec transactionRecord
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/transactions",
		body:     nt,
		what:     "created transaction",
		fallback: "failed to create transaction",
	}, &rec)
	if err != nil {
		return core.Transaction{}, err
	}
	return rec.toTransaction()
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     resourcePath("/transactions", id),
		what:     "transaction deletion",
		fallback: "failed to delete transaction",
	}, nil)
}

func (c *Client) Summary(ctx context.Context) (core.Summary, error) {
	var rec summaryRecord
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions/summary",
		what:     "summary",
		fallback: "failed to load summary",
	}, &rec)
	if err != nil {
		return core.Summary{}, err
	}
	return rec.toSummary()
}

// Statistics fetches per-category flows for the given window. An unknown
// window is rejected before any request is made.
func (c *Client) Statistics(ctx context.Context, tr core.TimeRange) (core.Statistics, error) {
	switch tr {
	case core.Week, core.Month, core.Year:
	default:
		return core.Statistics{}, core.ErrInvalidTimeRange
	}
	var rec statisticsRecord
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions/statistics",
		query:    url.Values{"timeRange": {string(tr)}},
		what:     "statistics",
		fallback: "failed to load statistics",
	}, &rec)
	if err != nil {
		return core.Statistics{}, err
	}
	return rec.toStatistics(tr)
}
