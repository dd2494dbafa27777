package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const testMinOpening = 200000

func newTestCustomerService() (*CustomerService, *fakeCustomers, *fakeTokens) {
	customers := newFakeCustomers()
	tokens := newFakeTokens()
	svc := NewCustomerService(customers, tokens, testMinOpening)
	svc.hashCost = bcrypt.MinCost
	return svc, customers, tokens
}

func validInput() CreateCustomerInput {
	return CreateCustomerInput{
		Name:             "Ada Obi",
		DOB:              time.Date(1992, 5, 17, 0, 0, 0, 0, time.UTC),
		Address:          "12 Marina Road",
		MobileNo:         "08030000001",
		Email:            "ada@test.com",
		AccountType:      "savings",
		OpeningBalance:   testMinOpening,
		MPIN:             "246810",
		SecurityQuestion: "first school",
		SecurityAnswer:   "st mary",
	}
}

func TestCreateCustomer(t *testing.T) {
	svc, customers, _ := newTestCustomerService()

	c, err := svc.CreateCustomer(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, c.AccountNumber, 10)
	assert.Equal(t, int64(testMinOpening), c.Balance)
	assert.NotEqual(t, "246810", c.MPINHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.MPINHash), []byte("246810")))
	require.NotNil(t, c.SecurityAnswerHash)

	stored, err := customers.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Email, stored.Email)
}

func TestCreateCustomer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateCustomerInput)
		wantErr error
	}{
		{"missing name", func(in *CreateCustomerInput) { in.Name = " " }, domain.ErrInvalidRequest},
		{"missing email", func(in *CreateCustomerInput) { in.Email = "" }, domain.ErrInvalidRequest},
		{"low opening balance", func(in *CreateCustomerInput) { in.OpeningBalance = testMinOpening - 1 }, domain.ErrOpeningBalance},
		{"short mpin", func(in *CreateCustomerInput) { in.MPIN = "123" }, domain.ErrInvalidMPIN},
		{"non-digit mpin", func(in *CreateCustomerInput) { in.MPIN = "12a456" }, domain.ErrInvalidMPIN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestCustomerService()
			in := validInput()
			tt.mutate(&in)
			_, err := svc.CreateCustomer(context.Background(), in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestCustomerService()
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.MobileNo = "08030000002"
	_, err = svc.CreateCustomer(ctx, in)
	require.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestCustomerService()
	ctx := context.Background()
	created, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	c, err := svc.Login(ctx, "ada@test.com", "246810")
	require.NoError(t, err)
	assert.Equal(t, created.ID, c.ID)

	_, err = svc.Login(ctx, "ada@test.com", "000000")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@test.com", "246810")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeMPIN(t *testing.T) {
	svc, _, _ := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangeMPIN(ctx, c.ID, "999999", "135790"), domain.ErrInvalidCredentials)
	require.ErrorIs(t, svc.ChangeMPIN(ctx, c.ID, "246810", "12"), domain.ErrInvalidMPIN)
	require.NoError(t, svc.ChangeMPIN(ctx, c.ID, "246810", "135790"))

	_, err = svc.Login(ctx, c.Email, "135790")
	require.NoError(t, err)
}

func TestUpdateMPINAndSecurityQuestion(t *testing.T) {
	svc, customers, _ := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateMPIN(ctx, c.Email, "111222"))
	_, err = svc.Login(ctx, c.Email, "111222")
	require.NoError(t, err)
	require.ErrorIs(t, svc.UpdateMPIN(ctx, "missing@test.com", "111222"), domain.ErrNotFound)

	require.ErrorIs(t, svc.UpdateSecurityQuestion(ctx, c.Email, "pet", ""), domain.ErrInvalidRequest)
	require.NoError(t, svc.UpdateSecurityQuestion(ctx, c.Email, "pet", "rex"))

	stored, err := customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "pet", stored.SecurityQuestion)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.SecurityAnswerHash), []byte("rex")))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, c.ID, nil, nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	name := "Ada O."
	updated, err := svc.UpdateProfile(ctx, c.ID, &name, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, c.Balance, updated.Balance)

	_, err = svc.UpdateProfile(ctx, uuid.New(), &name, nil, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPasswordReset(t *testing.T) {
	svc, _, tokens := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, c.Email)
	require.NoError(t, err)
	assert.Len(t, token, 40)
	assert.Equal(t, passwordResetTTL, tokens.ttls[token])

	require.NoError(t, svc.ResetPassword(ctx, token, "777888"))
	_, err = svc.Login(ctx, c.Email, "777888")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ResetPassword(ctx, token, "999000"), domain.ErrInvalidToken)
	require.ErrorIs(t, svc.ResetPassword(ctx, "unknown", "999000"), domain.ErrInvalidToken)

	_, err = svc.RequestPasswordReset(ctx, "missing@test.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPasswordReset_TokenSurvivesFailedUpdate(t *testing.T) {
	svc, customers, tokens := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, c.Email)
	require.NoError(t, err)

	customers.mpinErr = fmt.Errorf("UpdateMPIN: %w", domain.ErrStoreUnavailable)
	require.ErrorIs(t, svc.ResetPassword(ctx, token, "777888"), domain.ErrStoreUnavailable)
	assert.Equal(t, passwordResetTTL, tokens.ttls[token])

	require.NoError(t, svc.ResetPassword(ctx, token, "777888"))
	_, err = svc.Login(ctx, c.Email, "777888")
	require.NoError(t, err)
	require.ErrorIs(t, svc.ResetPassword(ctx, token, "999000"), domain.ErrInvalidToken)
}

func TestDeleteCustomer(t *testing.T) {
	svc, _, _ := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.CreateCustomer(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, c.ID))
	_, err = svc.GetCustomer(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.DeleteCustomer(ctx, c.ID), domain.ErrNotFound)
}

func TestGenerateAccountNumber(t *testing.T) {
	for range 20 {
		n, err := generateAccountNumber()
		require.NoError(t, err)
		require.Len(t, n, 10)
		for _, r := range n {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}
