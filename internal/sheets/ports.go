// Package sheets defines the spreadsheet mirror the worker keeps in step
// with the user's transactions.
package sheets

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a transaction has no row in the mirror.
var ErrNotFound = errors.New("transaction not in mirror")

// Ports for outbound adapters.
type (
	// TransactionMirror appends and removes rows keyed by transaction id.
	// Appending an id that is already present is a no-op.
	TransactionMirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// Mirror is what the worker reconciles against: it reads the rows back
	// and appends a batch with a single write. AppendTransactions skips ids
	// already present and returns how many rows it added.
	Mirror interface {
		TransactionMirror
		TransactionLister
		AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error)
	}
)

// Header is the first row of the mirror sheet. Row cells follow it.
var Header = []string{"ID", "Date", "Type", "Category", "Description", "Amount"}
