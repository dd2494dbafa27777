package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrServiceUnavailable = &AppError{http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable, please retry"}

	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero with at most two decimal places"}
	ErrInvalidAccountID    = &AppError{http.StatusBadRequest, "INVALID_ACCOUNT_ID", "Invalid account id"}
	ErrInvalidMPIN         = &AppError{http.StatusBadRequest, "INVALID_MPIN", "MPIN must be 6 digits"}
	ErrOpeningBalance      = &AppError{http.StatusBadRequest, "OPENING_BALANCE_TOO_LOW", "Opening balance is below the minimum"}
	ErrAccountNotFound     = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrTransactionNotFound = &AppError{http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found"}
	ErrInsufficientFunds   = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrSameAccount         = &AppError{http.StatusUnprocessableEntity, "SELF_TRANSFER_NOT_ALLOWED", "Cannot transfer to the same account"}
	ErrConcurrentUpdate    = &AppError{http.StatusConflict, "CONCURRENT_UPDATE", "Account was modified concurrently, please retry"}
	ErrEmailExists         = &AppError{http.StatusConflict, "EMAIL_EXISTS", "Email already registered"}
	ErrMobileExists        = &AppError{http.StatusConflict, "MOBILE_EXISTS", "Mobile number already registered"}
	ErrAdminExists         = &AppError{http.StatusConflict, "ADMIN_EXISTS", "Admin already exists"}
	ErrInvalidResetToken   = &AppError{http.StatusUnauthorized, "INVALID_RESET_TOKEN", "Reset token is invalid or expired"}
	ErrInvalidOTP          = &AppError{http.StatusUnauthorized, "INVALID_OTP", "OTP is invalid or expired"}
	ErrOTPAttemptsExceeded = &AppError{http.StatusTooManyRequests, "OTP_ATTEMPTS_EXCEEDED", "Too many incorrect OTP attempts, request a new code"}
	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyBusy     = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}
)
