package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

type analyticsService interface {
	TotalCustomers(ctx context.Context) (int, error)
	TotalTransactions(ctx context.Context, dr domain.DateRange) (domain.Totals, error)
	CustomerGrowth(ctx context.Context, days int) ([]domain.DailyCount, error)
}

type AnalyticsHandler struct {
	analytics analyticsService
}

func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

type dailyCountDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (h *AnalyticsHandler) TotalCustomers(w http.ResponseWriter, r *http.Request) {
	n, err := h.analytics.TotalCustomers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to count customers", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"total_customers": n})
}

func (h *AnalyticsHandler) TotalTransactions(w http.ResponseWriter, r *http.Request) {
	dr, fields := queryDateRange(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.analytics.TotalTransactions(r.Context(), dr)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to total transactions", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{
		"total_credit": money(t.TotalCredit),
		"total_debit":  money(t.TotalDebit),
	})
}

func (h *AnalyticsHandler) CustomerGrowth(w http.ResponseWriter, r *http.Request) {
	days, fields := queryInt(r, "days")
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	growth, err := h.analytics.CustomerGrowth(r.Context(), days)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute customer growth", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]dailyCountDTO, len(growth))
	for i, g := range growth {
		out[i] = dailyCountDTO{Date: g.Date, Count: g.Count}
	}
	RespondSuccess(w, http.StatusOK, out)
}
