package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

type otpService interface {
	RequestOTP(ctx context.Context, email, reason string) error
	VerifyOTP(ctx context.Context, email, code string) error
}

type OTPHandler struct {
	otps otpService
}

func NewOTPHandler(otps otpService) *OTPHandler {
	return &OTPHandler{otps: otps}
}

type requestOTPRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Reason string `json:"reason" validate:"required,max=100"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.otps.RequestOTP(r.Context(), req.Email, req.Reason); err != nil {
		logging.FromContext(r.Context()).Error("failed to issue otp", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.otps.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]bool{"verified": true})
}
