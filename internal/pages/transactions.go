package pages

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/aggregate"
	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type TransactionForm struct {
	Type        string
	Amount      string
	Category    string
	Description string
	Date        string
}

type TransactionsView struct {
	Transactions      []core.Transaction
	IncomeCategories  []core.Category
	ExpenseCategories []core.Category
	Totals            aggregate.TransactionTotals
	Today             core.Date
	Error             string
	Redirect          string
}

// Transactions loads the list and the categories for the form in parallel.
// A malformed half renders empty while the other half still shows.
func (c *Controller) Transactions(ctx context.Context) TransactionsView {
	var (
		txs     []core.Transaction
		cats    []core.Category
		txErr   error
		catsErr error
	)
	// Errors are kept per call so one failure does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		txs, txErr = c.api.ListTransactions(ctx)
		return nil
	})
	g.Go(func() error {
		cats, catsErr = c.api.ListCategories(ctx)
		return nil
	})
	_ = g.Wait()

	view := TransactionsView{Today: core.Today()}
	for _, err := range []error{txErr, catsErr} {
		if err == nil {
			continue
		}
		msg, redirect, _ := c.failure(ctx, log.OpList, err)
		if redirect != "" {
			return TransactionsView{Redirect: redirect}
		}
		if view.Error == "" {
			view.Error = msg
		}
	}

	if txErr == nil {
		view.Transactions = txs
		view.Totals = aggregate.Totals(txs)
	}
	if catsErr == nil {
		view.IncomeCategories = core.FilterCategories(cats, core.Income)
		view.ExpenseCategories = core.FilterCategories(cats, core.Expense)
	}
	return view
}

// CreateTransaction validates the form locally; nothing is sent when it
// does not pass.
func (c *Controller) CreateTransaction(ctx context.Context, f TransactionForm) Outcome {
	draft, err := parseTransactionForm(f)
	if err != nil {
		return Outcome{Error: err.Error(), Redirect: TransactionsPath}
	}
	if err := draft.Validate(); err != nil {
		return Outcome{Error: err.Error(), Redirect: TransactionsPath}
	}

	tx, err := c.api.CreateTransaction(ctx, api.NewTransaction{
		Description: draft.Description,
		Amount:      draft.Amount,
		Type:        draft.Type,
		Category:    draft.CategoryID,
		Date:        draft.Date,
	})
	if err != nil {
		return c.fail(ctx, log.OpCreate, TransactionsPath, err)
	}

	log.NewStructuredLogger(c.logger).LogTransactionCreated(ctx, tx.ID, string(tx.Type), tx.Amount.String(), tx.Category.ID)
	c.publish(ctx, amqp.NewTransactionCreated(tx))
	return Outcome{Notice: "transaction added", Redirect: TransactionsPath}
}

func (c *Controller) DeleteTransaction(ctx context.Context, id string) Outcome {
	if strings.TrimSpace(id) == "" {
		return Outcome{Error: "transaction not found", Redirect: TransactionsPath}
	}
	if err := c.api.DeleteTransaction(ctx, id); err != nil {
		return c.fail(ctx, log.OpDelete, TransactionsPath, err)
	}
	c.publish(ctx, amqp.NewTransactionDeleted(id))
	return Outcome{Notice: "transaction deleted", Redirect: TransactionsPath}
}

func parseTransactionForm(f TransactionForm) (core.TransactionDraft, error) {
	if strings.TrimSpace(f.Type) == "" || strings.TrimSpace(f.Amount) == "" ||
		strings.TrimSpace(f.Category) == "" || strings.TrimSpace(f.Date) == "" {
		return core.TransactionDraft{}, core.ErrMissingFields
	}
	t, err := core.ParseTxType(f.Type)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	amount, err := core.ParseMoney(f.Amount)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	return core.TransactionDraft{
		Type:        t,
		Amount:      amount,
		CategoryID:  strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
		Date:        date,
	}, nil
}
