package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

// Deposit credits amount to the customer and returns the new balance.
func (s *Service) Deposit(ctx context.Context, customerID uuid.UUID, amount int64, remarks string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("Deposit: %w", domain.ErrInvalidAmount)
	}

	var rec *domain.Transaction
	err := s.run(ctx, "deposit", func(ctx context.Context) error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			c, err := s.lock(ctx, tx, customerID, "customer")
			if err != nil {
				return err
			}
			rec, err = s.apply(ctx, tx, c, amount, 0, remarksOr(remarks, domain.RemarksDeposit))
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit applied",
		"customer_id", customerID,
		"transaction_id", rec.ID,
		"amount", amount,
		"balance", rec.ResultingBalance,
	)
	return rec.ResultingBalance, nil
}

// Withdraw debits amount from the customer and returns the new balance.
func (s *Service) Withdraw(ctx context.Context, customerID uuid.UUID, amount int64, remarks string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("Withdraw: %w", domain.ErrInvalidAmount)
	}

	var rec *domain.Transaction
	err := s.run(ctx, "withdraw", func(ctx context.Context) error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			c, err := s.lock(ctx, tx, customerID, "customer")
			if err != nil {
				return err
			}
			if c.Balance < amount {
				return domain.ErrInsufficientFunds
			}
			rec, err = s.apply(ctx, tx, c, 0, amount, remarksOr(remarks, domain.RemarksWithdrawal))
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("Withdraw: %w", err)
	}

	logging.FromContext(ctx).Info("withdrawal applied",
		"customer_id", customerID,
		"transaction_id", rec.ID,
		"amount", amount,
		"balance", rec.ResultingBalance,
	)
	return rec.ResultingBalance, nil
}
