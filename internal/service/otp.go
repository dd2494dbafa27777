package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/mail"
	"github.com/josh-kwaku/bank-backoffice/internal/tokenstore"
)

const (
	otpTTL = 5 * time.Minute
	// maxOTPAttempts is how many verifications one code allows before it is discarded.
	maxOTPAttempts = 5
)

type OTPService struct {
	codes  codeStore
	mailer mail.Sender
}

func NewOTPService(codes codeStore, mailer mail.Sender) *OTPService {
	return &OTPService{codes: codes, mailer: mailer}
}

func (s *OTPService) RequestOTP(ctx context.Context, email, reason string) error {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(reason) == "" {
		return fmt.Errorf("RequestOTP: email and reason are required: %w", domain.ErrInvalidRequest)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("RequestOTP: %w", err)
	}
	if err := s.codes.Put(ctx, codeKey(email), code, otpTTL); err != nil {
		return fmt.Errorf("RequestOTP: %w", err)
	}
	if err := s.codes.Delete(ctx, attemptsKey(email)); err != nil {
		return fmt.Errorf("RequestOTP: %w", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Your one-time password",
		Body:    fmt.Sprintf("Your OTP for %s: %s", reason, code),
	})
	if err != nil {
		return fmt.Errorf("RequestOTP: send: %w", err)
	}

	logging.FromContext(ctx).Info("otp issued", "reason", reason, "expires_in", otpTTL)
	return nil
}

// VerifyOTP consumes the code. A code verifies at most once, and each email
// gets maxOTPAttempts tries per issued code.
func (s *OTPService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("VerifyOTP: %w", domain.ErrInvalidOTP)
	}

	n, err := s.codes.Incr(ctx, attemptsKey(email), otpTTL)
	if err != nil {
		return fmt.Errorf("VerifyOTP: %w", err)
	}
	if n > maxOTPAttempts {
		if err := s.codes.Delete(ctx, codeKey(email)); err != nil {
			return fmt.Errorf("VerifyOTP: %w", err)
		}
		logging.FromContext(ctx).Warn("otp discarded after repeated failures", "attempts", n)
		return fmt.Errorf("VerifyOTP: %w", domain.ErrOTPAttemptsExceeded)
	}

	stored, err := s.codes.Get(ctx, codeKey(email))
	if err != nil {
		if errors.Is(err, tokenstore.ErrMissing) {
			return fmt.Errorf("VerifyOTP: %w", domain.ErrInvalidOTP)
		}
		return fmt.Errorf("VerifyOTP: %w", err)
	}
	if !codesEqual(stored, code) {
		return fmt.Errorf("VerifyOTP: %w", domain.ErrInvalidOTP)
	}

	// Another verification may have consumed or replaced the code since Get.
	taken, _, err := s.codes.Take(ctx, codeKey(email))
	if err != nil {
		if errors.Is(err, tokenstore.ErrMissing) {
			return fmt.Errorf("VerifyOTP: %w", domain.ErrInvalidOTP)
		}
		return fmt.Errorf("VerifyOTP: %w", err)
	}
	if !codesEqual(taken, code) {
		return fmt.Errorf("VerifyOTP: %w", domain.ErrInvalidOTP)
	}

	if err := s.codes.Delete(ctx, attemptsKey(email)); err != nil {
		logging.FromContext(ctx).Warn("otp attempt counter not cleared", "error", err)
	}
	return nil
}

func codeKey(email string) string {
	return "code:" + email
}

func attemptsKey(email string) string {
	return "attempts:" + email
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generateOTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
