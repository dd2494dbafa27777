package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-backoffice/internal/auth"
	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/service/ledger"
)

// CustomerUpdate is an admin edit of a customer. Balance only moves through the ledger.
type CustomerUpdate struct {
	Name        *string
	Email       *string
	MobileNo    *string
	Address     *string
	DOB         *time.Time
	AccountType *string
	MPIN        *string
}

type CustomerPage struct {
	Customers  []domain.Customer
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

type AdminService struct {
	admins      adminRepository
	customers   customerRepository
	onboarding  *CustomerService
	jwtSecret   string
	tokenExpiry time.Duration
	hashCost    int
}

func NewAdminService(admins adminRepository, customers customerRepository, onboarding *CustomerService, jwtSecret string, tokenExpiry time.Duration) *AdminService {
	return &AdminService{
		admins:      admins,
		customers:   customers,
		onboarding:  onboarding,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		hashCost:    bcrypt.DefaultCost,
	}
}

func (s *AdminService) Login(ctx context.Context, username, password string) (string, *domain.Admin, error) {
	a, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("Login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		logging.FromContext(ctx).Warn("admin login rejected", "username", username)
		return "", nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}

	token, err := auth.GenerateToken(a.ID, a.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("Login: %w", err)
	}

	logging.FromContext(ctx).Info("admin logged in", "admin_id", a.ID)
	return token, a, nil
}

func (s *AdminService) CreateAdmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 8 {
		return nil, fmt.Errorf("CreateAdmin: username and a password of at least 8 characters are required: %w", domain.ErrInvalidRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("CreateAdmin: hash password: %w", err)
	}

	a := &domain.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admins.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("CreateAdmin: %w", err)
	}

	logging.FromContext(ctx).Info("admin created", "admin_id", a.ID, "username", a.Username)
	return a, nil
}

func (s *AdminService) ListCustomers(ctx context.Context, search string, page, limit int) (*CustomerPage, error) {
	page, limit = ledger.NormalizePage(page, limit)

	customers, total, err := s.customers.List(ctx, strings.TrimSpace(search), limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("ListCustomers: %w", err)
	}
	return &CustomerPage{
		Customers:  customers,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: ledger.TotalPages(total, limit),
	}, nil
}

func (s *AdminService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return c, nil
}

func (s *AdminService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	c, err := s.onboarding.CreateCustomer(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	return c, nil
}

func (s *AdminService) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerUpdate) (*domain.Customer, error) {
	u := domain.ProfileUpdate{
		Name:        in.Name,
		Email:       in.Email,
		MobileNo:    in.MobileNo,
		Address:     in.Address,
		DOB:         in.DOB,
		AccountType: in.AccountType,
	}
	if in.MPIN != nil {
		if err := validateMPIN(*in.MPIN); err != nil {
			return nil, fmt.Errorf("UpdateCustomer: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.MPIN), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("UpdateCustomer: hash mpin: %w", err)
		}
		hs := string(hash)
		u.MPINHash = &hs
	}
	if u.IsEmpty() {
		return nil, fmt.Errorf("UpdateCustomer: nothing to update: %w", domain.ErrInvalidRequest)
	}

	c, err := s.customers.UpdateProfile(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("UpdateCustomer: %w", err)
	}

	logging.FromContext(ctx).Info("customer updated by admin", "customer_id", id)
	return c, nil
}

func (s *AdminService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.onboarding.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("DeleteCustomer: %w", err)
	}
	return nil
}
