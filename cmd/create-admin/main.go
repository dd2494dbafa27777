// Command create-admin provisions a back-office admin account from
// ADMIN_USERNAME and ADMIN_PASSWORD.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/josh-kwaku/bank-backoffice/internal/config"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/repository"
	"github.com/josh-kwaku/bank-backoffice/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init("bank-create-admin", cfg.LogLevel, cfg.AppEnv)

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		slog.Error("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectAttempts: cfg.DBConnectAttempts,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	customers := repository.NewCustomerRepository(db)
	admins := service.NewAdminService(repository.NewAdminRepository(db), customers, nil, cfg.AdminJWTSecret, cfg.AdminJWTExpiry)

	admin, err := admins.CreateAdmin(ctx, username, password)
	if err != nil {
		slog.Error("failed to create admin", "error", err)
		os.Exit(1)
	}
	slog.Info("admin created", "admin_id", admin.ID, "username", admin.Username)
}
