package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/mail"
	"github.com/josh-kwaku/bank-backoffice/internal/tokenstore"
)

type fakeCustomers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Customer
	// mpinErr fails the next UpdateMPIN.
	mpinErr error
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: make(map[uuid.UUID]*domain.Customer)}
}

func (f *fakeCustomers) Create(_ context.Context, c *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == c.Email {
			return domain.ErrEmailExists
		}
		if existing.MobileNo == c.MobileNo {
			return domain.ErrMobileExists
		}
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) find(match func(*domain.Customer) bool) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	return f.find(func(c *domain.Customer) bool { return c.Email == email })
}

func (f *fakeCustomers) GetByAccountNumber(_ context.Context, n string) (*domain.Customer, error) {
	return f.find(func(c *domain.Customer) bool { return c.AccountNumber == n })
}

func (f *fakeCustomers) UpdateProfile(_ context.Context, id uuid.UUID, u domain.ProfileUpdate) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.MobileNo != nil {
		c.MobileNo = *u.MobileNo
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.DOB != nil {
		c.DOB = *u.DOB
	}
	if u.AccountType != nil {
		c.AccountType = *u.AccountType
	}
	if u.MPINHash != nil {
		c.MPINHash = *u.MPINHash
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) UpdateMPIN(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mpinErr; err != nil {
		f.mpinErr = nil
		return err
	}
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.MPINHash = hash
	return nil
}

func (f *fakeCustomers) UpdateSecurityQuestion(_ context.Context, id uuid.UUID, q, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.SecurityQuestion = q
	c.SecurityAnswerHash = &hash
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCustomers) List(_ context.Context, search string, limit, offset int) ([]domain.Customer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(search)
	var all []domain.Customer
	for _, c := range f.byID {
		if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Email), needle) {
			all = append(all, *c)
		}
	}
	out := []domain.Customer{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		out = append(out, all[i])
	}
	return out, len(all), nil
}

type fakeTokens struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{vals: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeTokens) Put(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vals[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeTokens) Take(_ context.Context, key string) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return "", 0, tokenstore.ErrMissing
	}
	ttl := f.ttls[key]
	delete(f.vals, key)
	delete(f.ttls, key)
	return v, ttl, nil
}

func (f *fakeTokens) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return "", tokenstore.ErrMissing
	}
	return v, nil
}

func (f *fakeTokens) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.vals, k)
		delete(f.ttls, k)
	}
	return nil
}

func (f *fakeTokens) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.vals[key], 10, 64)
	n++
	f.vals[key] = strconv.FormatInt(n, 10)
	if _, ok := f.ttls[key]; !ok {
		f.ttls[key] = ttl
	}
	return n, nil
}

func (f *fakeTokens) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.vals {
		out = append(out, k)
	}
	return out
}

type fakeAdmins struct {
	byName map[string]*domain.Admin
}

func (f *fakeAdmins) Create(_ context.Context, a *domain.Admin) error {
	if _, ok := f.byName[a.Username]; ok {
		return domain.ErrAdminExists
	}
	cp := *a
	f.byName[a.Username] = &cp
	return nil
}

func (f *fakeAdmins) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	a, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}
