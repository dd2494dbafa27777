package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	if appErr.Status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	RespondAppError(w, domainAppError(err), nil)
}

func domainAppError(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ErrServiceUnavailable
	case errors.Is(err, domain.ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidAccountID):
		return ErrInvalidAccountID
	case errors.Is(err, domain.ErrInvalidMPIN):
		return ErrInvalidMPIN
	case errors.Is(err, domain.ErrOpeningBalance):
		return ErrOpeningBalance
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrInvalidRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, domain.ErrTransactionNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, domain.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, domain.ErrSameAccountTransfer):
		return ErrSameAccount
	case errors.Is(err, domain.ErrConflict):
		return ErrConcurrentUpdate
	case errors.Is(err, domain.ErrEmailExists):
		return ErrEmailExists
	case errors.Is(err, domain.ErrMobileExists):
		return ErrMobileExists
	case errors.Is(err, domain.ErrAdminExists):
		return ErrAdminExists
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, domain.ErrInvalidToken):
		return ErrInvalidResetToken
	case errors.Is(err, domain.ErrInvalidOTP):
		return ErrInvalidOTP
	case errors.Is(err, domain.ErrOTPAttemptsExceeded):
		return ErrOTPAttemptsExceeded
	default:
		slog.Error("unhandled domain error", "error", err)
		return ErrInternalError
	}
}
