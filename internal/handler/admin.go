package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/service"
)

type adminService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Admin, error)
	ListCustomers(ctx context.Context, search string, page, limit int) (*service.CustomerPage, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, in service.CreateCustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, in service.CustomerUpdate) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type AdminHandler struct {
	admins adminService
}

func NewAdminHandler(admins adminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type adminLoginResponse struct {
	Token string   `json:"token"`
	Admin adminDTO `json:"admin"`
}

type adminDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type customerListResponse struct {
	Customers  []customerDTO `json:"customers"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// adminUpdateRequest has no balance field; unknown JSON keys such as
// "balance" are ignored.
type adminUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	MobileNo    *string `json:"mobile_no" validate:"omitempty,numeric,min=7,max=15"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	DOB         *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	AccountType *string `json:"account_type" validate:"omitempty,max=50"`
	MPIN        *string `json:"mpin" validate:"omitempty,len=6,numeric"`
}

func (req adminUpdateRequest) toUpdate() (service.CustomerUpdate, error) {
	u := service.CustomerUpdate{
		Name:        req.Name,
		Email:       req.Email,
		MobileNo:    req.MobileNo,
		Address:     req.Address,
		AccountType: req.AccountType,
		MPIN:        req.MPIN,
	}
	if req.DOB != nil {
		dob, err := time.Parse(dateLayout, *req.DOB)
		if err != nil {
			return service.CustomerUpdate{}, domain.ErrInvalidRequest
		}
		u.DOB = &dob
	}
	return u, nil
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, a, err := h.admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		RespondAppError(w, loginError(err), nil)
		return
	}

	RespondSuccess(w, http.StatusOK, adminLoginResponse{
		Token: token,
		Admin: adminDTO{ID: a.ID, Username: a.Username},
	})
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var fields []FieldError
	page, errs := queryInt(r, "page")
	fields = append(fields, errs...)
	limit, errs := queryInt(r, "limit")
	fields = append(fields, errs...)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.admins.ListCustomers(r.Context(), r.URL.Query().Get("search"), page, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, customerListResponse{
		Customers:  toCustomerDTOs(res.Customers),
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	})
}

func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	c, err := h.admins.GetCustomer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *AdminHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	c, err := h.admins.CreateCustomer(r.Context(), in)
	if err != nil {
		logging.FromContext(r.Context()).Warn("admin customer creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/api/admin/customers/"+c.ID.String())
	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *AdminHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	var req adminUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	c, err := h.admins.UpdateCustomer(r.Context(), id, u)
	if err != nil {
		logging.FromContext(r.Context()).Warn("admin customer update failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *AdminHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if err := h.admins.DeleteCustomer(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("admin customer deletion failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
