package cli

import (
	"bytes"
	"context"
	"strings"
	"syscall"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestSetupLoggerHonoursLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&buf, &config.Config{LogLevel: "warn", LogFormat: "json"}, log.ComponentApp)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"component":"app"`) {
		t.Fatalf("expected json warn line with component, got %s", out)
	}
}

func TestLoadConfigRunsValidation(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig((*config.Config).Validate); err == nil {
		t.Fatal("expected validation error")
	}
	t.Setenv("PORT", "9090")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port from env, got %s", cfg.Port)
	}
}

func TestGracefulShutdownOnSIGTERM(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&buf, nil, log.ComponentApp)

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(logger, time.Second, func(context.Context) { close(cleaned) })

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send signal: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if ctx.Err() == nil {
		t.Fatal("context should be cancelled")
	}
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run")
	}
	if !strings.Contains(buf.String(), "Shutdown complete") {
		t.Fatalf("expected completion log, got %s", buf.String())
	}
}
