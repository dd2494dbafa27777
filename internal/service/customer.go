package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/tokenstore"
)

const passwordResetTTL = time.Hour

type CreateCustomerInput struct {
	Name             string
	DOB              time.Time
	Address          string
	MobileNo         string
	Email            string
	AccountType      string
	OpeningBalance   int64
	MPIN             string
	SecurityQuestion string
	SecurityAnswer   string
}

type CustomerService struct {
	customers  customerRepository
	resets     tokenStore
	minOpening int64
	hashCost   int
}

func NewCustomerService(customers customerRepository, resets tokenStore, minOpeningBalance int64) *CustomerService {
	return &CustomerService{
		customers:  customers,
		resets:     resets,
		minOpening: minOpeningBalance,
		hashCost:   bcrypt.DefaultCost,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateCreate(in); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	_, err := s.customers.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, fmt.Errorf("CreateCustomer: %w", domain.ErrEmailExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("CreateCustomer: check existing: %w", err)
	}

	mpinHash, err := bcrypt.GenerateFromPassword([]byte(in.MPIN), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: hash mpin: %w", err)
	}

	var answerHash *string
	if in.SecurityAnswer != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.SecurityAnswer), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("CreateCustomer: hash answer: %w", err)
		}
		hs := string(h)
		answerHash = &hs
	}

	acctNum, err := generateAccountNumber()
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	now := time.Now().UTC()
	c := &domain.Customer{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(in.Name),
		DOB:                in.DOB,
		Address:            in.Address,
		MobileNo:           in.MobileNo,
		Email:              in.Email,
		AccountType:        in.AccountType,
		AccountNumber:      acctNum,
		Balance:            in.OpeningBalance,
		MPINHash:           string(mpinHash),
		SecurityQuestion:   in.SecurityQuestion,
		SecurityAnswerHash: answerHash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	log.Info("customer created",
		"customer_id", c.ID,
		"account_number", c.AccountNumber,
		"opening_balance", c.Balance,
	)
	return c, nil
}

func (s *CustomerService) validateCreate(in CreateCustomerInput) error {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.MobileNo == "" || in.AccountType == "" {
		return fmt.Errorf("name, email, mobile number and account type are required: %w", domain.ErrInvalidRequest)
	}
	if in.OpeningBalance < s.minOpening {
		return fmt.Errorf("minimum is %d: %w", s.minOpening, domain.ErrOpeningBalance)
	}
	return validateMPIN(in.MPIN)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error) {
	c, err := s.customers.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("GetByAccountNumber: %w", err)
	}
	return c, nil
}

// UpdateProfile edits the contact fields a customer may change themselves.
func (s *CustomerService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email, mobileNo *string) (*domain.Customer, error) {
	u := domain.ProfileUpdate{Name: name, Email: email, MobileNo: mobileNo}
	if u.IsEmpty() {
		return nil, fmt.Errorf("UpdateProfile: nothing to update: %w", domain.ErrInvalidRequest)
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("UpdateProfile: empty name: %w", domain.ErrInvalidRequest)
	}

	c, err := s.customers.UpdateProfile(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}
	logging.FromContext(ctx).Info("customer profile updated", "customer_id", id)
	return c, nil
}

func (s *CustomerService) ChangeMPIN(ctx context.Context, id uuid.UUID, oldMPIN, newMPIN string) error {
	if err := validateMPIN(newMPIN); err != nil {
		return fmt.Errorf("ChangeMPIN: %w", err)
	}

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ChangeMPIN: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.MPINHash), []byte(oldMPIN)) != nil {
		return fmt.Errorf("ChangeMPIN: %w", domain.ErrInvalidCredentials)
	}

	if err := s.setMPIN(ctx, id, newMPIN); err != nil {
		return fmt.Errorf("ChangeMPIN: %w", err)
	}
	return nil
}

func (s *CustomerService) UpdateMPIN(ctx context.Context, email, newMPIN string) error {
	if err := validateMPIN(newMPIN); err != nil {
		return fmt.Errorf("UpdateMPIN: %w", err)
	}

	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("UpdateMPIN: %w", err)
	}
	if err := s.setMPIN(ctx, c.ID, newMPIN); err != nil {
		return fmt.Errorf("UpdateMPIN: %w", err)
	}
	return nil
}

func (s *CustomerService) UpdateSecurityQuestion(ctx context.Context, email, question, answer string) error {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return fmt.Errorf("UpdateSecurityQuestion: question and answer are required: %w", domain.ErrInvalidRequest)
	}

	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("UpdateSecurityQuestion: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(answer), s.hashCost)
	if err != nil {
		return fmt.Errorf("UpdateSecurityQuestion: hash answer: %w", err)
	}
	if err := s.customers.UpdateSecurityQuestion(ctx, c.ID, question, string(hash)); err != nil {
		return fmt.Errorf("UpdateSecurityQuestion: %w", err)
	}

	logging.FromContext(ctx).Info("security question updated", "customer_id", c.ID)
	return nil
}

// DeleteCustomer removes the customer together with its transaction history.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteCustomer: %w", err)
	}
	logging.FromContext(ctx).Info("customer deleted", "customer_id", id)
	return nil
}

func (s *CustomerService) Login(ctx context.Context, email, mpin string) (*domain.Customer, error) {
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.MPINHash), []byte(mpin)) != nil {
		logging.FromContext(ctx).Warn("customer login rejected", "customer_id", c.ID)
		return nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}
	return c, nil
}

// RequestPasswordReset stores a single-use reset token for the customer and
// returns it.
func (s *CustomerService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("RequestPasswordReset: %w", err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("RequestPasswordReset: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.resets.Put(ctx, token, c.ID.String(), passwordResetTTL); err != nil {
		return "", fmt.Errorf("RequestPasswordReset: %w", err)
	}

	logging.FromContext(ctx).Info("password reset requested",
		"customer_id", c.ID,
		"expires_in", passwordResetTTL,
	)
	return token, nil
}

func (s *CustomerService) ResetPassword(ctx context.Context, token, newMPIN string) error {
	if err := validateMPIN(newMPIN); err != nil {
		return fmt.Errorf("ResetPassword: %w", err)
	}

	raw, ttl, err := s.resets.Take(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrMissing) {
			return fmt.Errorf("ResetPassword: %w", domain.ErrInvalidToken)
		}
		return fmt.Errorf("ResetPassword: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("ResetPassword: stored id: %w", domain.ErrInvalidToken)
	}

	if err := s.setMPIN(ctx, id, newMPIN); err != nil {
		// The token stays redeemable for the rest of its lifetime unless the
		// customer is gone.
		if !errors.Is(err, domain.ErrNotFound) && ttl > 0 {
			if perr := s.resets.Put(context.WithoutCancel(ctx), token, raw, ttl); perr != nil {
				logging.FromContext(ctx).Error("password reset token not restored", "customer_id", id, "error", perr)
			}
		}
		return fmt.Errorf("ResetPassword: %w", err)
	}
	return nil
}

func (s *CustomerService) setMPIN(ctx context.Context, id uuid.UUID, mpin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(mpin), s.hashCost)
	if err != nil {
		return fmt.Errorf("setMPIN: hash: %w", err)
	}
	if err := s.customers.UpdateMPIN(ctx, id, string(hash)); err != nil {
		return fmt.Errorf("setMPIN: %w", err)
	}
	logging.FromContext(ctx).Info("customer mpin updated", "customer_id", id)
	return nil
}

func validateMPIN(mpin string) error {
	if len(mpin) != 6 {
		return domain.ErrInvalidMPIN
	}
	for _, r := range mpin {
		if r < '0' || r > '9' {
			return domain.ErrInvalidMPIN
		}
	}
	return nil
}

func generateAccountNumber() (string, error) {
	digits := make([]byte, 10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
