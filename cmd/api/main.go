package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/config"
	"github.com/MrJamesThe3rd/kova/internal/database"
	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/expense/importer"
	expenseStore "github.com/MrJamesThe3rd/kova/internal/expense/store"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	kovaHttp "github.com/MrJamesThe3rd/kova/internal/http"
	expenseHandler "github.com/MrJamesThe3rd/kova/internal/http/expense"
	paymentHandler "github.com/MrJamesThe3rd/kova/internal/http/payment"
	projectHandler "github.com/MrJamesThe3rd/kova/internal/http/project"
	publicHandler "github.com/MrJamesThe3rd/kova/internal/http/public"
	templateHandler "github.com/MrJamesThe3rd/kova/internal/http/template"
	"github.com/MrJamesThe3rd/kova/internal/logging"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	milestoneStore "github.com/MrJamesThe3rd/kova/internal/milestone/store"
	"github.com/MrJamesThe3rd/kova/internal/project"
	projectStore "github.com/MrJamesThe3rd/kova/internal/project/store"
	"github.com/MrJamesThe3rd/kova/internal/ratelimit"
	"github.com/MrJamesThe3rd/kova/internal/share"
	"github.com/MrJamesThe3rd/kova/internal/template"
	templateStore "github.com/MrJamesThe3rd/kova/internal/template/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	db, err := database.New(cfg.ConnectionString(), database.NewSlowQueryTracer(logger, cfg.DB.SlowThreshold))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	var (
		projects   = projectStore.New(db)
		milestones = milestoneStore.New(db)
		expenses   = expenseStore.New(db)
	)

	var (
		templateService = template.NewService(templateStore.New(db), logger)
		ledger          = milestone.NewLedger(milestones, logger)
		projectService  = project.NewService(projects, milestones, milestone.NewAllocator(templateService), ledger, logger)
		expenseService  = expense.NewService(expenses, projectService, importer.New(), logger)
		financials      = financial.NewService(projectService, expenses)
		gate            = share.NewGate(projects, projectService, milestones, expenses, logger)
	)

	opts := kovaHttp.Options{
		Logger:         logger,
		Tokens:         auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ping:           db.PingContext,
	}

	if cfg.Redis.Addr != "" {
		rdb := ratelimit.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()

		opts.Limiter = ratelimit.New(rdb, "kova:share", cfg.Redis.ShareLimit, cfg.Redis.ShareWindow)

		logger.Info("share rate limit enabled",
			zap.String("redis", cfg.Redis.Addr),
			zap.Int("limit", cfg.Redis.ShareLimit),
			zap.Duration("window", cfg.Redis.ShareWindow),
		)
	}

	router := kovaHttp.New(opts, kovaHttp.Handlers{
		Projects:  projectHandler.NewHandler(projectService, financials, gate, logger),
		Expenses:  expenseHandler.NewHandler(expenseService, logger),
		Payments:  paymentHandler.NewHandler(ledger, logger),
		Templates: templateHandler.NewHandler(templateService, logger),
		Public:    publicHandler.NewHandler(gate, logger),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("app", cfg.App.Name))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	}

	return nil
}
