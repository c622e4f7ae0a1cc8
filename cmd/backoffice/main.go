package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/banking/accounts"
	"github.com/odyssey-erp/backoffice/internal/banking/branches"
	"github.com/odyssey-erp/backoffice/internal/banking/customers"
	"github.com/odyssey-erp/backoffice/internal/banking/transactions"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/live"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/cache"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
	"github.com/odyssey-erp/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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
	slog.SetDefault(logger)

	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout,
		backend.WithLogger(logger),
		backend.WithObserver(metrics))

	sessionManager := shared.NewSessionManager(redisClient, "backoffice_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := &view.Responder{
		Templates:       templates,
		CSRF:            csrfManager,
		Logger:          logger,
		DefaultDatabase: cfg.Database(),
	}
	writes := app.MutationLimiter(cfg)
	refresh := listview.NewRefreshSignal()

	authService := auth.NewService(auth.NewStaticRepository(auth.Operator{
		Email:        cfg.OperatorEmail,
		PasswordHash: cfg.OperatorPasswordHash,
	}), cfg.LoginEnabled())
	authHandler := auth.NewHandler(logger, authService, pages, sessionManager)
	if !cfg.LoginEnabled() {
		logger.Warn("operator login disabled, OPERATOR_PASSWORD_HASH is empty")
	}

	customerService := customers.NewService(customers.NewRepository(client))
	accountService := accounts.NewService(accounts.NewRepository(client))
	transactionService := transactions.NewService(transactions.NewRepository(client))
	branchService := branches.NewService(branches.NewRepository(client))

	dashboardCache := dashboard.NewCache(redisClient, cfg.StatsCacheTTL)
	dashboardService := dashboard.NewService(dashboard.NewRepository(client), dashboardCache, logger, metrics)

	liveOpts := []live.Option{
		live.WithQuiet(cfg.FetchDebounce, nil),
		live.WithObservers(metrics, metrics),
	}
	if len(cfg.LiveOrigins) > 0 {
		liveOpts = append(liveOpts, live.WithOriginPatterns(cfg.LiveOrigins...))
	}
	liveHandler := live.NewHandler(logger, refresh, pages.Database, []live.Binding{
		customers.Screen(customerService),
		accounts.Screen(accountService),
		transactions.Screen(transactionService),
		branches.Screen(branchService),
	}, liveOpts...)

	asynqOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(asynqOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(asynqOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Pages:               pages,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Refresh:             refresh,
		AuthHandler:         authHandler,
		DashboardHandler:    dashboard.NewHandler(logger, dashboardService, pages, cfg.DocsURL),
		CustomersHandler:    customers.NewHandler(logger, customerService, pages, writes),
		AccountsHandler:     accounts.NewHandler(logger, accountService, pages, writes),
		TransactionsHandler: transactions.NewHandler(logger, transactionService, pages, writes),
		BranchesHandler:     branches.NewHandler(logger, branchService, pages, writes),
		LiveHandler:         liveHandler,
		JobHandler:          jobs.NewHandler(inspector, logger),
		Dashboard:           dashboardService,
		Warmups:             jobClient,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("backend", client.BaseURL()))
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
