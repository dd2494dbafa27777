package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

var errAppendFailed = errors.New("append failed")

// memStore is an in-memory customer and transaction store. InTx serialises
// transactions and restores the prior state when fn fails.
type memStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]domain.Customer
	records   []domain.Transaction

	// conflicts makes the next n balance writes fail with ErrConflict.
	conflicts int
	// failCreditAppend makes appending any credit record fail.
	failCreditAppend bool
	// blockLock makes GetForUpdate wait for ctx to end.
	blockLock bool

	casCalls int
}

func newMemStore() *memStore {
	return &memStore{customers: make(map[uuid.UUID]domain.Customer)}
}

func (m *memStore) seed(name string, balance int64) domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.Customer{ID: uuid.New(), Name: name, Balance: balance}
	m.customers[c.ID] = c
	return c
}

func (m *memStore) balance(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[id].Balance
}

func (m *memStore) recordsFor(id uuid.UUID) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, r := range m.records {
		if r.CustomerID == id {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	customers := make(map[uuid.UUID]domain.Customer, len(m.customers))
	for k, v := range m.customers {
		customers[k] = v
	}
	records := append([]domain.Transaction(nil), m.records...)

	if err := fn(nil); err != nil {
		m.customers = customers
		m.records = records
		return err
	}
	return nil
}

func (m *memStore) GetForUpdate(ctx context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Customer, error) {
	if m.blockLock {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CompareAndSetBalance(_ context.Context, _ *sql.Tx, id uuid.UUID, expectedBalance, expectedVersion, newBalance int64) error {
	m.casCalls++
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrConflict
	}
	c, ok := m.customers[id]
	if !ok || c.Balance != expectedBalance || c.Version != expectedVersion {
		return domain.ErrConflict
	}
	c.Balance = newBalance
	c.Version++
	m.customers[id] = c
	return nil
}

func (m *memStore) Create(_ context.Context, _ *sql.Tx, t *domain.Transaction) error {
	if m.failCreditAppend && t.CreditAmount > 0 {
		return errAppendFailed
	}
	m.records = append(m.records, *t)
	return nil
}

// memTransactions exposes the record side of memStore under the
// transactionRepo method names.
type memTransactions struct{ *memStore }

func (m memTransactions) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m memTransactions) Query(_ context.Context, customerID uuid.UUID, dr domain.DateRange, limit, offset int) ([]domain.Transaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type indexed struct {
		seq int
		rec domain.Transaction
	}
	var matched []indexed
	for i, r := range m.records {
		if r.CustomerID != customerID || !inRange(r.TransactionDate, dr) {
			continue
		}
		matched = append(matched, indexed{seq: i, rec: r})
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.rec.TransactionDate.Equal(b.rec.TransactionDate) {
			return a.rec.TransactionDate.After(b.rec.TransactionDate)
		}
		return a.seq > b.seq
	})

	out := []domain.Transaction{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		out = append(out, matched[i].rec)
	}
	return out, len(matched), nil
}

func (m memTransactions) SumCreditsAndDebits(_ context.Context, customerID uuid.UUID) (domain.Totals, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerID]
	if !ok {
		return domain.Totals{}, 0, domain.ErrNotFound
	}
	var t domain.Totals
	for _, r := range m.records {
		if r.CustomerID == customerID {
			t.TotalCredit += r.CreditAmount
			t.TotalDebit += r.DebitAmount
		}
	}
	return t, c.Balance, nil
}

// LatestDate runs inside InTx, which already holds mu.
func (m memTransactions) LatestDate(_ context.Context, _ *sql.Tx, customerID uuid.UUID) (time.Time, error) {
	var latest time.Time
	for _, r := range m.records {
		if r.CustomerID == customerID && r.TransactionDate.After(latest) {
			latest = r.TransactionDate
		}
	}
	return latest, nil
}

func inRange(at time.Time, dr domain.DateRange) bool {
	if dr.From != nil && at.Before(*dr.From) {
		return false
	}
	if dr.To != nil && at.After(*dr.To) {
		return false
	}
	return true
}

func newTestService(store *memStore) *Service {
	return NewService(store, memTransactions{store}, store, Options{
		StoreTimeout: time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})
}
