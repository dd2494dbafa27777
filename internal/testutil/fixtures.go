package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const TestMPIN = "123456"

var seq atomic.Int64

// SeedCustomer inserts a customer with the given opening balance and MPIN TestMPIN.
func SeedCustomer(t *testing.T, db *sql.DB, name string, balance int64) *domain.Customer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestMPIN), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash mpin: %v", err)
	}

	n := seq.Add(1)
	now := time.Now().UTC()
	c := &domain.Customer{
		ID:               uuid.New(),
		Name:             name,
		DOB:              time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:          "1 Test Street",
		MobileNo:         fmt.Sprintf("9%09d", n),
		Email:            fmt.Sprintf("customer%d@test.com", n),
		AccountType:      "savings",
		AccountNumber:    fmt.Sprintf("%010d", n),
		Balance:          balance,
		MPINHash:         string(hash),
		SecurityQuestion: "first pet",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err = db.Exec(
		`INSERT INTO customers (id, name, dob, address, mobile_no, email, account_type,
			account_number, balance, version, mpin_hash, security_question, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12, $13)`,
		c.ID, c.Name, c.DOB, c.Address, c.MobileNo, c.Email, c.AccountType,
		c.AccountNumber, c.Balance, c.MPINHash, c.SecurityQuestion, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return c
}

func SeedAdmin(t *testing.T, db *sql.DB, username, password string) *domain.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	a := &domain.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	_, err = db.Exec(
		`INSERT INTO admins (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, a.Username, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed admin %s: %v", username, err)
	}
	return a
}

func GetBalance(t *testing.T, db *sql.DB, customerID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM customers WHERE id = $1`, customerID).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance %s: %v", customerID, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, customerID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE customer_id = $1`, customerID).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for %s: %v", customerID, err)
	}
	return count
}

// NetLedger returns credits minus debits over all of a customer's records.
func NetLedger(t *testing.T, db *sql.DB, customerID uuid.UUID) int64 {
	t.Helper()

	var net int64
	err := db.QueryRow(
		`SELECT COALESCE(SUM(credit_amount - debit_amount), 0) FROM transactions WHERE customer_id = $1`,
		customerID,
	).Scan(&net)
	if err != nil {
		t.Fatalf("net ledger for %s: %v", customerID, err)
	}
	return net
}
