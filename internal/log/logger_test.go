package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONHandlerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentAPI, Handler: NewHandler(&buf, slog.LevelInfo, "json")})
	logger.Info("request done", FieldStatusCode, 200)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["component"] != ComponentAPI || line["msg"] != "request done" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestFromContext(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP, Handler: NewHandler(&bytes.Buffer{}, slog.LevelInfo, "text")})

	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger stored in context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger outside requests")
	}
}

func TestLogErrorAddsOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentPages, Handler: NewHandler(&buf, slog.LevelInfo, "json")})

	NewStructuredLogger(logger).LogError(context.Background(), "boom", errors.New("broken"), ComponentPages, OpCreate, NewFields())

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line[FieldError] != "broken" || line[FieldOperation] != OpCreate || line["level"] != "ERROR" {
		t.Fatalf("unexpected log line %v", line)
	}
}
