package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const transactionColumns = `id, customer_id, transaction_date, remarks,
	credit_amount, debit_amount, resulting_balance, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a record inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, customer_id, transaction_date, remarks,
			credit_amount, debit_amount, resulting_balance, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.CustomerID, t.TransactionDate, t.Remarks,
		t.CreditAmount, t.DebitAmount, t.ResultingBalance, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapStoreError(err))
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", mapStoreError(err))
	}
	return t, nil
}

// Query returns one page of a customer's records, newest first, and the total
// number of records matching the range.
func (r *TransactionRepository) Query(ctx context.Context, customerID uuid.UUID, dr domain.DateRange, limit, offset int) ([]domain.Transaction, int, error) {
	where, args := dateRangeClause(dr, []any{customerID})
	where = `customer_id = $1` + where

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("Query: count: %w", mapStoreError(err))
	}

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+
			fmt.Sprintf(` ORDER BY transaction_date DESC, seq DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("Query: %w", mapStoreError(err))
	}
	defer rows.Close()

	records := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("Query: scan: %w", err)
		}
		records = append(records, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("Query: rows: %w", mapStoreError(err))
	}
	return records, total, nil
}

// LatestDate returns the newest transaction_date among the customer's records
// inside tx, or the zero time when there are none.
func (r *TransactionRepository) LatestDate(ctx context.Context, tx *sql.Tx, customerID uuid.UUID) (time.Time, error) {
	var latest sql.NullTime
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(transaction_date) FROM transactions WHERE customer_id = $1`, customerID,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("LatestDate: %w", mapStoreError(err))
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time.UTC(), nil
}

// SumCreditsAndDebits returns the customer's totals and current balance read
// in one statement, so both come from the same snapshot.
func (r *TransactionRepository) SumCreditsAndDebits(ctx context.Context, customerID uuid.UUID) (domain.Totals, int64, error) {
	var (
		t       domain.Totals
		balance int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT c.balance, COALESCE(SUM(t.credit_amount), 0), COALESCE(SUM(t.debit_amount), 0)
		FROM customers c
		LEFT JOIN transactions t ON t.customer_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, c.balance`, customerID,
	).Scan(&balance, &t.TotalCredit, &t.TotalDebit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Totals{}, 0, fmt.Errorf("SumCreditsAndDebits: %w", domain.ErrNotFound)
		}
		return domain.Totals{}, 0, fmt.Errorf("SumCreditsAndDebits: %w", mapStoreError(err))
	}
	return t, balance, nil
}

// Totals sums credits and debits across all customers within dr.
func (r *TransactionRepository) Totals(ctx context.Context, dr domain.DateRange) (domain.Totals, error) {
	where, args := dateRangeClause(dr, nil)

	var t domain.Totals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(credit_amount), 0), COALESCE(SUM(debit_amount), 0)
		FROM transactions WHERE TRUE`+where, args...,
	).Scan(&t.TotalCredit, &t.TotalDebit)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("Totals: %w", mapStoreError(err))
	}
	return t, nil
}

// dateRangeClause appends inclusive bounds on transaction_date after the existing args.
func dateRangeClause(dr domain.DateRange, args []any) (string, []any) {
	var clause string
	if dr.From != nil {
		args = append(args, *dr.From)
		clause += fmt.Sprintf(` AND transaction_date >= $%d`, len(args))
	}
	if dr.To != nil {
		args = append(args, *dr.To)
		clause += fmt.Sprintf(` AND transaction_date <= $%d`, len(args))
	}
	return clause, args
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.CustomerID, &t.TransactionDate, &t.Remarks,
		&t.CreditAmount, &t.DebitAmount, &t.ResultingBalance, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
