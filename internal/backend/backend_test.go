package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/session"
)

func quiet() *log.Logger {
	return log.New(log.Config{Component: log.ComponentApp, Handler: log.NewHandler(io.Discard, slog.LevelError, "text")})
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg := &config.Config{SessionBackend: "memory", AMQPExchange: "fintrack", AMQPQueue: "q"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if bc.Session != MemorySession {
		t.Fatalf("unexpected session type %q", bc.Session)
	}
	cfg.SessionBackend = "redis"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Session: MemorySession}, false},
		{"sqlite needs path", Config{Session: SQLiteSession}, true},
		{"sqlite", Config{Session: SQLiteSession, SQLiteDBPath: "x.db"}, false},
		{"amqp needs queue", Config{Session: MemorySession, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
		{"unknown", Config{Session: "file"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSQLiteSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Session: SQLiteSession, SQLiteDBPath: filepath.Join(t.TempDir(), "session.db")}
	f := NewFactory(quiet())

	res, err := f.Create(ctx, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Store == nil {
		t.Fatal("sqlite backend should expose a store to ping")
	}
	if _, ok := res.Publisher.(amqp.Discard); !ok {
		t.Fatalf("expected discard publisher, got %T", res.Publisher)
	}
	store, err := session.Open(ctx, res.Slot)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetToken(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	res, err = f.Create(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer res.Cleanup()
	store, err = session.Open(ctx, res.Slot)
	if err != nil {
		t.Fatal(err)
	}
	if tok, ok := store.Token(); !ok || tok != "abc" {
		t.Fatalf("expected persisted token, got %q", tok)
	}
}

func TestCreateFallsBackWhenBrokerUnreachable(t *testing.T) {
	f := NewFactory(quiet())
	f.dial = func(string, string, string) (*amqp.Client, error) {
		return nil, errors.New("connection refused")
	}
	res, err := f.Create(context.Background(), Config{
		Session:      MemorySession,
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "fintrack",
		AMQPQueue:    "events",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := res.Publisher.(amqp.Discard); !ok {
		t.Fatalf("expected discard publisher, got %T", res.Publisher)
	}
	if res.Store != nil {
		t.Fatal("memory backend has nothing to ping")
	}
	if err := res.Cleanup(); err != nil {
		t.Fatal(err)
	}
}
