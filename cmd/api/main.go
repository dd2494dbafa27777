package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josh-kwaku/bank-backoffice/internal/config"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/mail"
	"github.com/josh-kwaku/bank-backoffice/internal/repository"
	"github.com/josh-kwaku/bank-backoffice/internal/service"
	"github.com/josh-kwaku/bank-backoffice/internal/service/ledger"
	"github.com/josh-kwaku/bank-backoffice/internal/tokenstore"
)

const janitorInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("bank-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectAttempts: cfg.DBConnectAttempts,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := tokenstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	resets := tokenstore.New(rdb, "pwreset")
	otps := tokenstore.New(rdb, "otp")

	var mailer mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	ledgerSvc := ledger.NewService(customerRepo, transactionRepo, repository.NewDB(db), ledger.Options{
		StoreTimeout: cfg.StoreTimeout,
		MaxRetries:   cfg.LedgerMaxRetries,
	})
	customerSvc := service.NewCustomerService(customerRepo, resets, cfg.MinOpeningBalance)
	adminSvc := service.NewAdminService(adminRepo, customerRepo, customerSvc, cfg.AdminJWTSecret, cfg.AdminJWTExpiry)
	analyticsSvc := service.NewAnalyticsService(customerRepo, transactionRepo)
	otpSvc := service.NewOTPService(otps, mailer)

	janitor := service.NewIdempotencyJanitor(idempotencyRepo, logger, janitorInterval)
	go janitor.Start(ctx)

	handler := newRouter(cfg, logger, routerDeps{
		ledger:      ledgerSvc,
		customers:   customerSvc,
		admins:      adminSvc,
		analytics:   analyticsSvc,
		otps:        otpSvc,
		idempotency: idempotencyRepo,
		db:          db,
		redisPing:   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
