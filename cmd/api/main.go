package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	httpadp "oneshelf-backend/internal/adapter/http"
	mw "oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/adapter/repository/gormrepo"
	"oneshelf-backend/internal/config"
	"oneshelf-backend/internal/infrastructure/cache"
	"oneshelf-backend/internal/infrastructure/db"
	"oneshelf-backend/internal/infrastructure/telemetry"
	"oneshelf-backend/internal/usecase/approval"
	"oneshelf-backend/internal/usecase/loan"
	"oneshelf-backend/pkg/id"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownOtel(context.Background()) }()

	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("schema migrated", "driver", cfg.DBDriver)
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	loans := gormrepo.NewLoanRepository(gdb)
	tx := gormrepo.NewGormUoW(gdb)
	loanUC := loan.NewUsecase(tx, loans, gormrepo.NewLedgerRepository(gdb), log)
	approvalUC := approval.NewUsecase(loans, tx, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.JSONSerializer = httpadp.JSONSerializer{}
	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}),
		mw.RequestLogger(log),
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))),
	)

	// routes
	httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    sqlDB.PingContext,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:          httpadp.NewLoanHandler(loanUC),
		Approvals:      httpadp.NewApprovalHandler(approvalUC),
		JWTSecret:      []byte(cfg.JWTSecret),
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
	}.Register(e)

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
