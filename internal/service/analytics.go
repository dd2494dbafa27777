package service

import (
	"context"
	"fmt"
	"time"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const defaultGrowthDays = 30

type AnalyticsService struct {
	customers    customerStats
	transactions transactionTotals
	now          func() time.Time
}

func NewAnalyticsService(customers customerStats, transactions transactionTotals) *AnalyticsService {
	return &AnalyticsService{
		customers:    customers,
		transactions: transactions,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalyticsService) TotalCustomers(ctx context.Context) (int, error) {
	n, err := s.customers.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("TotalCustomers: %w", err)
	}
	return n, nil
}

func (s *AnalyticsService) TotalTransactions(ctx context.Context, dr domain.DateRange) (domain.Totals, error) {
	if dr.From != nil && dr.To != nil && dr.From.After(*dr.To) {
		return domain.Totals{}, fmt.Errorf("TotalTransactions: start after end: %w", domain.ErrInvalidRequest)
	}
	t, err := s.transactions.Totals(ctx, dr)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("TotalTransactions: %w", err)
	}
	return t, nil
}

// CustomerGrowth counts sign-ups per UTC day over the last days days,
// including today.
func (s *AnalyticsService) CustomerGrowth(ctx context.Context, days int) ([]domain.DailyCount, error) {
	if days < 1 {
		days = defaultGrowthDays
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	out, err := s.customers.GrowthSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("CustomerGrowth: %w", err)
	}
	return out, nil
}
