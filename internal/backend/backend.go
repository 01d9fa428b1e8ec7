// Package backend builds the pieces whose implementation depends on
// configuration: the session slot and the activity publisher.
package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/session"
)

// SessionType selects where the session token and user are kept.
type SessionType string

const (
	SQLiteSession SessionType = "sqlite"
	MemorySession SessionType = "memory"
)

func (st SessionType) String() string {
	return string(st)
}

func (st SessionType) IsValid() bool {
	switch st {
	case SQLiteSession, MemorySession:
		return true
	default:
		return false
	}
}

// Publisher sends transaction events. amqp.Discard is used when events are
// disabled.
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.TransactionEvent) error
}

// Pinger is implemented by slots backed by a database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc releases resources held by a Result.
type CleanupFunc func() error

type Result struct {
	Slot session.Slot
	// Store is non-nil when the slot is durable.
	Store     Pinger
	Publisher Publisher
	Cleanup   CleanupFunc
}

type Config struct {
	Session      SessionType
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Session:      SessionType(appConfig.SessionBackend),
		SQLiteDBPath: appConfig.SessionDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if !c.Session.IsValid() {
		return fmt.Errorf("invalid session backend %q: must be one of %v", c.Session, SessionTypeStrings())
	}
	if c.Session == SQLiteSession && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite session backend")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return errors.New("AMQP exchange and queue are required when AMQP_URL is set")
	}
	return nil
}
