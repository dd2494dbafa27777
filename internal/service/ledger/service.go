// Package ledger applies deposits, withdrawals and transfers to customer
// balances and records one immutable transaction per balance change.
//
// Every mutation runs in a database transaction that holds the customer row
// lock and writes the balance with a compare-and-set, so the stored balance
// always equals the opening balance plus the net of the customer's records.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

type customerRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Customer, error)
	CompareAndSetBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, expectedBalance, expectedVersion, newBalance int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	Query(ctx context.Context, customerID uuid.UUID, dr domain.DateRange, limit, offset int) ([]domain.Transaction, int, error)
	SumCreditsAndDebits(ctx context.Context, customerID uuid.UUID) (domain.Totals, int64, error)
	LatestDate(ctx context.Context, tx *sql.Tx, customerID uuid.UUID) (time.Time, error)
}

type txRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type Options struct {
	// StoreTimeout bounds each attempt of an operation.
	StoreTimeout time.Duration
	// MaxRetries is the number of attempts made when a balance write conflicts.
	MaxRetries   int
	RetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 20 * time.Millisecond
	}
	return o
}

type Service struct {
	customers    customerRepo
	transactions transactionRepo
	db           txRunner
	opts         Options
	now          func() time.Time
}

func NewService(customers customerRepo, transactions transactionRepo, db txRunner, opts Options) *Service {
	return &Service{
		customers:    customers,
		transactions: transactions,
		db:           db,
		opts:         opts.withDefaults(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// run executes fn under the store timeout and retries it from scratch while
// it fails with domain.ErrConflict.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	log := logging.FromContext(ctx)

	var err error
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		err = s.attempt(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}

		log.Warn("balance update conflicted, retrying",
			"operation", op,
			"attempt", attempt,
			"error", err,
		)

		if attempt == s.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, ctx.Err())
		case <-time.After(s.opts.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (s *Service) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	err := fn(opCtx)
	if err != nil && opCtx.Err() != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

// lock reads and row-locks a customer. role names the side in error messages.
func (s *Service) lock(ctx context.Context, tx *sql.Tx, id uuid.UUID, role string) (*domain.Customer, error) {
	c, err := s.customers.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s %s: %w", role, id, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("lock %s: %w", role, err)
	}
	return c, nil
}

// apply moves a locked customer's balance by credit-debit and appends the
// matching record. c is updated in place so later steps see the new state.
func (s *Service) apply(ctx context.Context, tx *sql.Tx, c *domain.Customer, credit, debit int64, remarks string) (*domain.Transaction, error) {
	if debit > c.Balance {
		return nil, fmt.Errorf("apply: %w", domain.ErrInsufficientFunds)
	}
	if credit > math.MaxInt64-c.Balance {
		return nil, fmt.Errorf("apply: balance overflow: %w", domain.ErrInvalidAmount)
	}
	newBalance := c.Balance + credit - debit

	if err := s.customers.CompareAndSetBalance(ctx, tx, c.ID, c.Balance, c.Version, newBalance); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	// Records never predate the account's newest one, even if the clock steps back.
	latest, err := s.transactions.LatestDate(ctx, tx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	now := s.now()
	if now.Before(latest) {
		now = latest
	}
	rec := &domain.Transaction{
		ID:               uuid.New(),
		CustomerID:       c.ID,
		TransactionDate:  now,
		Remarks:          remarks,
		CreditAmount:     credit,
		DebitAmount:      debit,
		ResultingBalance: newBalance,
		CreatedAt:        now,
	}
	if err := s.transactions.Create(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("apply: append record: %w", err)
	}

	c.Balance = newBalance
	c.Version++
	return rec, nil
}

func remarksOr(remarks, fallback string) string {
	if strings.TrimSpace(remarks) == "" {
		return fallback
	}
	return remarks
}
