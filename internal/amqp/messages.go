package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
)

// TransactionEvent records a change the user made through the front-end.
// Created events carry the full transaction; deleted events only the id.
type TransactionEvent struct {
	Kind          EventKind         `json:"kind"`
	TransactionID string            `json:"transaction_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewTransactionCreated(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Kind:          TransactionCreated,
		TransactionID: tx.ID,
		Transaction:   &tx,
		Timestamp:     time.Now(),
	}
}

func NewTransactionDeleted(id string) *TransactionEvent {
	return &TransactionEvent{
		Kind:          TransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *TransactionEvent) Validate() error {
	if e.TransactionID == "" {
		return errors.New("event has no transaction id")
	}
	switch e.Kind {
	case TransactionCreated:
		if e.Transaction == nil {
			return errors.New("created event has no transaction")
		}
	case TransactionDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
