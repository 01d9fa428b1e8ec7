package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type Factory struct {
	logger *log.Logger
	// dial is swapped in tests.
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentApp, Handler: slog.Default().Handler()})
	}
	return &Factory{logger: logger, dial: amqp.NewClient}
}

// Create opens the session slot and, when configured, the AMQP publisher.
// A broker that cannot be reached is logged and replaced by amqp.Discard.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Publisher: amqp.Discard{}}
	var closers []func() error

	switch cfg.Session {
	case SQLiteSession:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite session store: %w", err)
		}
		if err := repo.Ping(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("SQLite session store not reachable: %w", err)
		}
		res.Slot, res.Store = repo, repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite session store", "db_path", cfg.SQLiteDBPath)
	case MemorySession:
		res.Slot = session.NewMemorySlot()
		f.logger.InfoContext(ctx, "Initialized in-memory session store; sessions end with the process")
	}

	if cfg.AMQPURL != "" {
		client, err := f.dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		} else {
			res.Publisher = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	return res, nil
}
