package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

type customerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u domain.ProfileUpdate) (*domain.Customer, error)
	UpdateMPIN(ctx context.Context, id uuid.UUID, mpinHash string) error
	UpdateSecurityQuestion(ctx context.Context, id uuid.UUID, question, answerHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]domain.Customer, int, error)
}

type adminRepository interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

type customerStats interface {
	Count(ctx context.Context) (int, error)
	GrowthSince(ctx context.Context, since time.Time) ([]domain.DailyCount, error)
}

type transactionTotals interface {
	Totals(ctx context.Context, dr domain.DateRange) (domain.Totals, error)
}

// tokenStore holds short-lived single-use values. Take removes the key it returns.
type tokenStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, time.Duration, error)
}

// codeStore adds the lookups and counters OTP verification needs.
type codeStore interface {
	tokenStore
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
