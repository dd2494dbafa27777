package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/repository"
	"github.com/josh-kwaku/bank-backoffice/internal/testutil"
)

func TestCustomerRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	ctx := context.Background()

	ada := testutil.SeedCustomer(t, db, "Ada Lovelace", 5000)
	testutil.SeedCustomer(t, db, "Grace Hopper", 7000)

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.GetByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, ada.Email, got.Email)
		assert.Equal(t, int64(5000), got.Balance)

		got, err = repo.GetByAccountNumber(ctx, ada.AccountNumber)
		require.NoError(t, err)
		assert.Equal(t, ada.ID, got.ID)

		_, err = repo.GetByEmail(ctx, "nobody@test.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := *ada
		dup.ID = uuid.New()
		dup.MobileNo = "8000000001"
		dup.AccountNumber = "8000000001"
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("list with search", func(t *testing.T) {
		all, total, err := repo.List(ctx, "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, all, 2)

		found, total, err := repo.List(ctx, "grace", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Grace Hopper", found[0].Name)
	})

	t.Run("profile update leaves balance alone", func(t *testing.T) {
		name := "Ada King"
		got, err := repo.UpdateProfile(ctx, ada.ID, domain.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
		assert.Equal(t, int64(5000), got.Balance)
	})

	t.Run("compare and set", func(t *testing.T) {
		err := inTx(t, db, func(tx *sql.Tx) error {
			c, err := repo.GetForUpdate(ctx, tx, ada.ID)
			require.NoError(t, err)
			return repo.CompareAndSetBalance(ctx, tx, ada.ID, c.Balance, c.Version, c.Balance+100)
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5100), testutil.GetBalance(t, db, ada.ID))

		err = inTx(t, db, func(tx *sql.Tx) error {
			return repo.CompareAndSetBalance(ctx, tx, ada.ID, 5000, 0, 9999)
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(5100), testutil.GetBalance(t, db, ada.ID))
	})

	t.Run("count and growth", func(t *testing.T) {
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		growth, err := repo.GrowthSince(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, growth)
		var sum int
		for _, d := range growth {
			sum += d.Count
		}
		assert.Equal(t, 2, sum)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ada.ID))
		assert.ErrorIs(t, repo.Delete(ctx, ada.ID), domain.ErrNotFound)
	})
}

func TestTransactionRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	c := testutil.SeedCustomer(t, db, "Ada Lovelace", 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	balance := int64(0)
	for i := range 5 {
		balance += 100
		rec := &domain.Transaction{
			ID:               uuid.New(),
			CustomerID:       c.ID,
			TransactionDate:  base.AddDate(0, 0, i),
			Remarks:          domain.RemarksDeposit,
			CreditAmount:     100,
			ResultingBalance: balance,
			CreatedAt:        base,
		}
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) error { return repo.Create(ctx, tx, rec) }))
	}

	page, total, err := repo.Query(ctx, c.ID, domain.DateRange{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(500), page[0].ResultingBalance)

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	ranged, total, err := repo.Query(ctx, c.ID, domain.DateRange{From: &from, To: &to}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, ranged, 3)

	sums, balance, err := repo.SumCreditsAndDebits(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), sums.TotalCredit)
	assert.Zero(t, sums.TotalDebit)
	assert.Zero(t, balance, "balance is read from the customer row")

	empty := testutil.SeedCustomer(t, db, "Nobody", 700)
	sums, balance, err = repo.SumCreditsAndDebits(ctx, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, sums.TotalCredit)
	assert.Equal(t, int64(700), balance)

	_, _, err = repo.SumCreditsAndDebits(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var latest, none time.Time
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		var err error
		if latest, err = repo.LatestDate(ctx, tx, c.ID); err != nil {
			return err
		}
		none, err = repo.LatestDate(ctx, tx, empty.ID)
		return err
	}))
	assert.True(t, latest.Equal(base.AddDate(0, 0, 4)))
	assert.True(t, none.IsZero())

	got, err := repo.GetByID(ctx, page[0].ID)
	require.NoError(t, err)
	assert.Equal(t, page[0].ResultingBalance, got.ResultingBalance)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestIdempotencyRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	missing, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.Reserve(ctx, "k1", "h1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Reserve(ctx, "k1", "h2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a live reservation holds the key")

	got, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Pending())
	assert.Equal(t, "h1", got.RequestHash)

	require.NoError(t, repo.Complete(ctx, &repository.IdempotencyCacheEntry{
		Key: "k1", RequestHash: "h1", StatusCode: 201, ResponseBody: []byte(`{"ok":true}`),
		ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Release(ctx, "k1"))

	got, err = repo.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got, "release keeps a completed entry")
	assert.False(t, got.Pending())
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(got.ResponseBody))

	ok, err = repo.Reserve(ctx, "k2", "h", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Release(ctx, "k2"))
	ok, err = repo.Reserve(ctx, "k2", "h", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a released key can be reserved again")

	ok, err = repo.Reserve(ctx, "old", "h", -time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.Reserve(ctx, "old", "h", -time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "an expired row is taken over")
	n, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdminRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAdminRepository(db)
	ctx := context.Background()

	a := testutil.SeedAdmin(t, db, "root", "s3cretpass")

	got, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	err = repo.Create(ctx, &domain.Admin{ID: uuid.New(), Username: "root", PasswordHash: "x", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, domain.ErrAdminExists)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()
	return repository.NewDB(db).InTx(context.Background(), fn)
}
