package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/session"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig(func(c *config.Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		return c.ValidateWorker()
	})
	if err != nil {
		cli.SetupLogger(os.Stderr, nil, log.ComponentWorker).Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Stdout, cfg, log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	mirror, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(mirror, logger)

	// Catch up on transactions created while the worker was down.
	if cfg.SessionBackend == "sqlite" {
		if err := reconcile(ctx, cfg, syncWorker, logger); err != nil {
			logger.Error("Startup reconcile failed", log.FieldError, err.Error())
		}
	}

	runErr := syncWorker.Run(ctx, consumer)
	consumer.Close()
	if runErr != nil {
		logger.Error("Message consumption failed", log.FieldError, runErr.Error())
		os.Exit(1)
	}
	<-done
	logger.Info("Worker shutdown complete")
}

func reconcile(ctx context.Context, cfg *config.Config, w *worker.SyncWorker, logger *log.Logger) error {
	repo, err := storage.NewSQLiteRepository(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	store, err := session.Open(ctx, repo)
	if err != nil {
		return err
	}
	if !store.Authenticated() {
		logger.Info("No stored session, skipping startup reconcile")
		return nil
	}
	client := api.New(cfg.APIBaseURL, store,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger.WithComponent(log.ComponentAPI)))
	return w.Reconcile(ctx, client)
}
