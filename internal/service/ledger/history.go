package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type HistoryQuery struct {
	CustomerID string
	Page       int
	PageSize   int
	Range      domain.DateRange
}

type HistoryPage struct {
	Transactions []domain.Transaction
	Page         int
	PageSize     int
	Total        int
	TotalPages   int
}

type Summary struct {
	TotalCredit    int64
	TotalDebit     int64
	CurrentBalance int64
}

// NormalizePage clamps page and size to usable values.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// History lists a customer's records newest first. An unknown customer yields
// an empty page rather than an error.
func (s *Service) History(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	customerID, err := domain.ParseID(q.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	page, size := NormalizePage(q.Page, q.PageSize)

	var (
		records []domain.Transaction
		total   int
	)
	err = s.run(ctx, "history", func(ctx context.Context) error {
		var err error
		records, total, err = s.transactions.Query(ctx, customerID, q.Range, size, (page-1)*size)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}

	return &HistoryPage{
		Transactions: records,
		Page:         page,
		PageSize:     size,
		Total:        total,
		TotalPages:   TotalPages(total, size),
	}, nil
}

// Summary aggregates a customer's credits and debits together with the current balance.
func (s *Service) Summary(ctx context.Context, rawCustomerID string) (*Summary, error) {
	customerID, err := domain.ParseID(rawCustomerID)
	if err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}

	var out Summary
	err = s.run(ctx, "summary", func(ctx context.Context) error {
		totals, balance, err := s.transactions.SumCreditsAndDebits(ctx, customerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}
		out = Summary{
			TotalCredit:    totals.TotalCredit,
			TotalDebit:     totals.TotalDebit,
			CurrentBalance: balance,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}
	return &out, nil
}

func (s *Service) GetTransaction(ctx context.Context, rawID string) (*domain.Transaction, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", domain.ErrInvalidRequest)
	}

	var t *domain.Transaction
	err = s.run(ctx, "get_transaction", func(ctx context.Context) error {
		var err error
		t, err = s.transactions.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return t, nil
}
