package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/bank-backoffice/internal/config"
	"github.com/josh-kwaku/bank-backoffice/internal/handler"
	"github.com/josh-kwaku/bank-backoffice/internal/middleware"
	"github.com/josh-kwaku/bank-backoffice/internal/repository"
	"github.com/josh-kwaku/bank-backoffice/internal/service"
	"github.com/josh-kwaku/bank-backoffice/internal/service/ledger"
)

type routerDeps struct {
	ledger      *ledger.Service
	customers   *service.CustomerService
	admins      *service.AdminService
	analytics   *service.AnalyticsService
	otps        *service.OTPService
	idempotency *repository.IdempotencyRepository
	db          *sql.DB
	redisPing   func(ctx context.Context) error
}

func newRouter(cfg *config.Config, logger *slog.Logger, d routerDeps) http.Handler {
	health := handler.NewHealthHandler(d.db, d.redisPing)
	customers := handler.NewCustomerHandler(d.customers)
	transactions := handler.NewTransactionHandler(d.ledger)
	admins := handler.NewAdminHandler(d.admins)
	analytics := handler.NewAnalyticsHandler(d.analytics)
	otps := handler.NewOTPHandler(d.otps)

	idem := middleware.Idempotency(d.idempotency)
	admin := middleware.AdminAuth(cfg.AdminJWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness)

	mux.HandleFunc("POST /api/customers", customers.Create)
	mux.HandleFunc("POST /api/customers/login", customers.Login)
	mux.HandleFunc("POST /api/customers/update-mpin", customers.UpdateMPIN)
	mux.HandleFunc("POST /api/customers/update-security-question", customers.UpdateSecurityQuestion)
	mux.HandleFunc("POST /api/customers/password-reset/request", customers.RequestPasswordReset)
	mux.HandleFunc("POST /api/customers/password-reset/reset", customers.ResetPassword)
	mux.HandleFunc("GET /api/customers/by-account/{accountNumber}", customers.GetByAccountNumber)
	mux.HandleFunc("GET /api/customers/{id}", customers.Get)
	mux.HandleFunc("PUT /api/customers/profile/{id}", customers.UpdateProfile)
	mux.HandleFunc("PUT /api/customers/change-password/{id}", customers.ChangeMPIN)
	mux.HandleFunc("DELETE /api/customers/{id}", customers.Delete)

	mux.Handle("POST /api/transactions/deposit/{id}", idem(http.HandlerFunc(transactions.Deposit)))
	mux.Handle("POST /api/transactions/withdraw/{id}", idem(http.HandlerFunc(transactions.Withdraw)))
	mux.Handle("POST /api/transactions/transfer", idem(http.HandlerFunc(transactions.Transfer)))
	mux.HandleFunc("GET /api/transactions/history/{customerId}", transactions.History)
	mux.HandleFunc("GET /api/transactions/summary/{customerId}", transactions.Summary)
	mux.HandleFunc("GET /api/transactions/{id}", transactions.Get)

	mux.HandleFunc("POST /api/admin/login", admins.Login)
	mux.Handle("GET /api/admin/customers", admin(http.HandlerFunc(admins.ListCustomers)))
	mux.Handle("POST /api/admin/customers", admin(http.HandlerFunc(admins.CreateCustomer)))
	mux.Handle("GET /api/admin/customers/{id}", admin(http.HandlerFunc(admins.GetCustomer)))
	mux.Handle("PUT /api/admin/customers/{id}", admin(http.HandlerFunc(admins.UpdateCustomer)))
	mux.Handle("DELETE /api/admin/customers/{id}", admin(http.HandlerFunc(admins.DeleteCustomer)))
	mux.Handle("GET /api/admin/analytics/total-customers", admin(http.HandlerFunc(analytics.TotalCustomers)))
	mux.Handle("GET /api/admin/analytics/total-transactions", admin(http.HandlerFunc(analytics.TotalTransactions)))
	mux.Handle("GET /api/admin/analytics/customer-growth", admin(http.HandlerFunc(analytics.CustomerGrowth)))

	mux.HandleFunc("POST /api/otp/request-otp", otps.Request)
	mux.HandleFunc("POST /api/otp/verify-otp", otps.Verify)

	var h http.Handler = mux
	h = middleware.CORS(cfg.CORSOrigin)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Tracing(h)
	h = middleware.Recovery(h)
	return h
}
