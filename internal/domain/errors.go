package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	ErrInvalidAccountID    = errors.New("invalid account id")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConflict            = errors.New("concurrent update conflict")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrEmailExists         = errors.New("email already exists")
	ErrMobileExists        = errors.New("mobile number already exists")
	ErrOpeningBalance      = errors.New("opening balance below minimum")
	ErrInvalidMPIN         = errors.New("mpin must be 6 digits")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidOTP          = errors.New("invalid or expired otp")
	ErrOTPAttemptsExceeded = errors.New("too many otp attempts")
	ErrAdminExists         = errors.New("admin already exists")
)
