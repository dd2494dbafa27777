package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/service"
)

type customerService interface {
	CreateCustomer(ctx context.Context, in service.CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email, mobileNo *string) (*domain.Customer, error)
	ChangeMPIN(ctx context.Context, id uuid.UUID, oldMPIN, newMPIN string) error
	UpdateMPIN(ctx context.Context, email, newMPIN string) error
	UpdateSecurityQuestion(ctx context.Context, email, question, answer string) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	Login(ctx context.Context, email, mpin string) (*domain.Customer, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newMPIN string) error
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type createCustomerRequest struct {
	Name             string          `json:"name" validate:"required,max=100"`
	DOB              string          `json:"dob" validate:"required,datetime=2006-01-02"`
	Address          string          `json:"address" validate:"max=255"`
	MobileNo         string          `json:"mobile_no" validate:"required,numeric,min=7,max=15"`
	Email            string          `json:"email" validate:"required,email"`
	AccountType      string          `json:"account_type" validate:"required,max=50"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	MPIN             string          `json:"mpin" validate:"required,len=6,numeric"`
	SecurityQuestion string          `json:"security_question" validate:"max=255"`
	SecurityAnswer   string          `json:"security_answer" validate:"max=255"`
}

// toInput converts the request. dob has already passed the datetime check.
func (req createCustomerRequest) toInput() (service.CreateCustomerInput, error) {
	dob, err := time.Parse(dateLayout, req.DOB)
	if err != nil {
		return service.CreateCustomerInput{}, domain.ErrInvalidRequest
	}
	opening, err := domain.ToMinor(req.OpeningBalance)
	if err != nil {
		return service.CreateCustomerInput{}, err
	}
	return service.CreateCustomerInput{
		Name:             req.Name,
		DOB:              dob,
		Address:          req.Address,
		MobileNo:         req.MobileNo,
		Email:            req.Email,
		AccountType:      req.AccountType,
		OpeningBalance:   opening,
		MPIN:             req.MPIN,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	}, nil
}

type customerLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	MPIN  string `json:"mpin" validate:"required"`
}

type customerLoginResponse struct {
	CustomerID    uuid.UUID `json:"customer_id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
}

type updateMPINRequest struct {
	Email   string `json:"email" validate:"required,email"`
	NewMPIN string `json:"new_mpin" validate:"required,len=6,numeric"`
}

type securityQuestionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Question string `json:"security_question" validate:"required,max=255"`
	Answer   string `json:"security_answer" validate:"required,max=255"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequestResponse struct {
	ResetToken string `json:"reset_token"`
	ExpiresIn  int    `json:"expires_in_seconds"`
}

type resetPasswordRequest struct {
	Token   string `json:"token" validate:"required"`
	NewMPIN string `json:"new_mpin" validate:"required,len=6,numeric"`
}

type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	MobileNo *string `json:"mobile_no" validate:"omitempty,numeric,min=7,max=15"`
}

type changeMPINRequest struct {
	OldMPIN string `json:"old_mpin" validate:"required"`
	NewMPIN string `json:"new_mpin" validate:"required,len=6,numeric"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	c, err := h.customers.CreateCustomer(r.Context(), in)
	if err != nil {
		logging.FromContext(r.Context()).Warn("customer creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/customers/"+c.ID.String())
	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req customerLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.customers.Login(r.Context(), req.Email, req.MPIN)
	if err != nil {
		RespondAppError(w, loginError(err), nil)
		return
	}

	RespondSuccess(w, http.StatusOK, customerLoginResponse{
		CustomerID:    c.ID,
		Name:          c.Name,
		AccountNumber: c.AccountNumber,
	})
}

func (h *CustomerHandler) UpdateMPIN(w http.ResponseWriter, r *http.Request) {
	var req updateMPINRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.customers.UpdateMPIN(r.Context(), req.Email, req.NewMPIN); err != nil {
		logging.FromContext(r.Context()).Warn("mpin update failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "MPIN updated"})
}

func (h *CustomerHandler) UpdateSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	var req securityQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.customers.UpdateSecurityQuestion(r.Context(), req.Email, req.Question, req.Answer); err != nil {
		logging.FromContext(r.Context()).Warn("security question update failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "Security question updated"})
}

func (h *CustomerHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	token, err := h.customers.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		logging.FromContext(r.Context()).Warn("password reset request failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, resetRequestResponse{ResetToken: token, ExpiresIn: 3600})
}

func (h *CustomerHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.customers.ResetPassword(r.Context(), req.Token, req.NewMPIN); err != nil {
		logging.FromContext(r.Context()).Warn("password reset failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "MPIN reset"})
}

func (h *CustomerHandler) GetByAccountNumber(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetByAccountNumber(r.Context(), r.PathValue("accountNumber"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	c, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.customers.UpdateProfile(r.Context(), id, req.Name, req.Email, req.MobileNo)
	if err != nil {
		logging.FromContext(r.Context()).Warn("profile update failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) ChangeMPIN(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	var req changeMPINRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.customers.ChangeMPIN(r.Context(), id, req.OldMPIN, req.NewMPIN); err != nil {
		logging.FromContext(r.Context()).Warn("mpin change failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "MPIN changed"})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("customer deletion failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loginError hides whether the account or the secret was wrong.
func loginError(err error) *AppError {
	appErr := domainAppError(err)
	if appErr == ErrResourceNotFound {
		return ErrInvalidCredentials
	}
	return appErr
}
