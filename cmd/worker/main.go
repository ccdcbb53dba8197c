package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/sky-orcamentos/sky-orcamentos/internal/app"
	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/importer"
	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/db"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	validate := validator.New()
	importRepo := importer.NewRepository(pool)
	clientRepo := clients.NewRepository(pool)
	productRepo := products.NewRepository(pool)
	importService := importer.NewService(logger, importRepo, noopEnqueuer{}, clientRepo, productRepo, validate)

	sender := &jobs.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		From:   cfg.SMTPFrom,
		Logger: logger,
	}

	importHandler := func(ctx context.Context, t *asynq.Task) error {
		var payload jobs.ImportCSVPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		return importService.Process(ctx, payload.JobID)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(sender, logger)},
			{Type: jobs.TaskTypeImportCSV, Handler: importHandler},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// noopEnqueuer satisfies the importer service; the worker consumes jobs,
// it never enqueues them.
type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueImport(ctx context.Context, jobID int64) error { return nil }
