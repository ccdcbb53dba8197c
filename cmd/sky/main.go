package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/sky-orcamentos/sky-orcamentos/internal/app"
	"github.com/sky-orcamentos/sky-orcamentos/internal/auth"
	"github.com/sky-orcamentos/sky-orcamentos/internal/categories"
	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/dashboard"
	"github.com/sky-orcamentos/sky-orcamentos/internal/importer"
	"github.com/sky-orcamentos/sky-orcamentos/internal/observability"
	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/cache"
	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/db"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/quotes"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
	"github.com/sky-orcamentos/sky-orcamentos/internal/trash"
	"github.com/sky-orcamentos/sky-orcamentos/internal/workspaces"
	"github.com/sky-orcamentos/sky-orcamentos/jobs"
	"github.com/sky-orcamentos/sky-orcamentos/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "sky_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	validate := validator.New()
	metrics := observability.NewMetrics()

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	captcha := &auth.RecaptchaVerifier{Secret: cfg.RecaptchaSecret}
	google := &auth.GoogleTokenVerifier{ClientID: cfg.GoogleClientID}
	authService := auth.NewService(authRepo, captcha, google)
	authHandler := auth.NewHandler(logger, authService, sessionManager, validate)

	workspaceRepo := workspaces.NewRepository(pool)
	workspaceService := workspaces.NewService(workspaceRepo)
	workspaceHandler := workspaces.NewHandler(logger, workspaceService, validate)
	scopeMiddleware := workspaces.Middleware{Repo: workspaceRepo, Logger: logger}

	trashRepo := trash.NewRepository(pool)
	trashService := trash.NewService(trashRepo, metrics)
	trashHandler := trash.NewHandler(logger, trashService)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService, trashService, validate)

	categoryRepo := categories.NewRepository(pool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService, trashService, validate)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService, trashService, validate)

	reportClient := report.NewClient(cfg.GotenbergURL)
	quoteRepo := quotes.NewRepository(pool)
	quoteService := quotes.NewService(quoteRepo, clientRepo, productRepo, reportClient, jobsClient)
	quoteHandler := quotes.NewHandler(logger, quoteService, trashService, validate)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardCache := dashboard.NewCache(redisClient, 5*time.Minute)
	dashboardService := dashboard.NewService(dashboardRepo, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	importRepo := importer.NewRepository(pool)
	importService := importer.NewService(logger, importRepo, jobsClient, clientRepo, productRepo, validate)
	importHandler := importer.NewHandler(logger, importService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		Metrics:          metrics,
		AuthHandler:      authHandler,
		WorkspaceHandler: workspaceHandler,
		ClientHandler:    clientHandler,
		CategoryHandler:  categoryHandler,
		ProductHandler:   productHandler,
		QuoteHandler:     quoteHandler,
		TrashHandler:     trashHandler,
		DashboardHandler: dashboardHandler,
		ImportHandler:    importHandler,
		JobHandler:       jobHandler,
		ScopeMiddleware:  scopeMiddleware,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
