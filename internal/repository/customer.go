package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const customerColumns = `id, name, dob, address, mobile_no, email, account_type,
	account_number, balance, version, mpin_hash, security_question,
	security_answer_hash, created_at, updated_at`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (
			id, name, dob, address, mobile_no, email, account_type,
			account_number, balance, version, mpin_hash, security_question,
			security_answer_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, c.DOB, c.Address, c.MobileNo, c.Email, c.AccountType,
		c.AccountNumber, c.Balance, c.Version, c.MPINHash, c.SecurityQuestion,
		c.SecurityAnswerHash, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", customerWriteError(err))
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", mapStoreError(err))
	}
	return c, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", mapStoreError(err))
	}
	return c, nil
}

func (r *CustomerRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE account_number = $1`, accountNumber,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByAccountNumber: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByAccountNumber: %w", mapStoreError(err))
	}
	return c, nil
}

// GetForUpdate reads the customer row and holds its lock until tx ends.
func (r *CustomerRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Customer, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", mapStoreError(err))
	}
	return c, nil
}

// CompareAndSetBalance writes newBalance only if the row still holds
// expectedBalance at expectedVersion, and bumps the version.
func (r *CustomerRepository) CompareAndSetBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, expectedBalance, expectedVersion, newBalance int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE customers SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND balance = $4 AND version = $5`,
		newBalance, time.Now().UTC(), id, expectedBalance, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("CompareAndSetBalance: %w", mapStoreError(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("CompareAndSetBalance: rows affected: %w", mapStoreError(err))
	}
	if rows == 0 {
		return fmt.Errorf("CompareAndSetBalance: %w", domain.ErrConflict)
	}
	return nil
}

// UpdateProfile applies the non-nil fields of u. Balance is never touched here.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id uuid.UUID, u domain.ProfileUpdate) (*domain.Customer, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.MobileNo != nil {
		add("mobile_no", *u.MobileNo)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.DOB != nil {
		add("dob", *u.DOB)
	}
	if u.AccountType != nil {
		add("account_type", *u.AccountType)
	}
	if u.MPINHash != nil {
		add("mpin_hash", *u.MPINHash)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	row := r.db.QueryRowContext(ctx,
		`UPDATE customers SET `+strings.Join(sets, ", ")+
			fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args))+customerColumns,
		args...,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("UpdateProfile: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("UpdateProfile: %w", customerWriteError(err))
	}
	return c, nil
}

func (r *CustomerRepository) UpdateMPIN(ctx context.Context, id uuid.UUID, mpinHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET mpin_hash = $1, updated_at = $2 WHERE id = $3`,
		mpinHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("UpdateMPIN: %w", mapStoreError(err))
	}
	return expectOneRow("UpdateMPIN", res)
}

func (r *CustomerRepository) UpdateSecurityQuestion(ctx context.Context, id uuid.UUID, question, answerHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET security_question = $1, security_answer_hash = $2, updated_at = $3 WHERE id = $4`,
		question, answerHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("UpdateSecurityQuestion: %w", mapStoreError(err))
	}
	return expectOneRow("UpdateSecurityQuestion", res)
}

// Delete removes the customer. Its transactions go with it through the foreign key cascade.
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", mapStoreError(err))
	}
	return expectOneRow("Delete", res)
}

// List matches search case-insensitively against name and email. An empty search matches all.
func (r *CustomerRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Customer, int, error) {
	pattern := "%" + escapeLike(search) + "%"

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE name ILIKE $1 OR email ILIKE $1`, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", mapStoreError(err))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", mapStoreError(err))
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", mapStoreError(err))
	}
	return customers, total, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", mapStoreError(err))
	}
	return n, nil
}

// GrowthSince counts customers created per UTC day from since onwards, oldest day first.
func (r *CustomerRepository) GrowthSince(ctx context.Context, since time.Time) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM customers WHERE created_at >= $1
		GROUP BY day ORDER BY day`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("GrowthSince: %w", mapStoreError(err))
	}
	defer rows.Close()

	out := []domain.DailyCount{}
	for rows.Next() {
		var d domain.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("GrowthSince: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GrowthSince: rows: %w", mapStoreError(err))
	}
	return out, nil
}

func customerWriteError(err error) error {
	switch uniqueConstraint(err) {
	case "customers_email_key":
		return domain.ErrEmailExists
	case "customers_mobile_no_key":
		return domain.ErrMobileExists
	}
	return mapStoreError(err)
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, mapStoreError(err))
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Scan(
		&c.ID, &c.Name, &c.DOB, &c.Address, &c.MobileNo, &c.Email, &c.AccountType,
		&c.AccountNumber, &c.Balance, &c.Version, &c.MPINHash, &c.SecurityQuestion,
		&c.SecurityAnswerHash, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
