package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agendly/bookhub/internal/repository"
	"agendly/bookhub/pkg/crypto"
)

// OTPSender delivers a verification code to a phone number. SMS delivery is an
// external collaborator; the default sender only logs.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogOTPSender is the development sender: codes go to the log instead of SMS.
type LogOTPSender struct {
	Logger *zap.Logger
}

func (s *LogOTPSender) Send(_ context.Context, phone, code string) error {
	s.Logger.Info("otp code issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

type OTPService interface {
	// RequestCode issues a verification code for the user's phone, subject to
	// a resend backoff.
	RequestCode(ctx context.Context, userID uuid.UUID, phone string) error

	// VerifyCode checks the code and marks the user's phone verified.
	VerifyCode(ctx context.Context, userID uuid.UUID, phone, code string) error
}

type otpService struct {
	stateStore    repository.StateStore
	userRepo      repository.UserRepository
	sender        OTPSender
	codeTTL       time.Duration
	resendBackoff time.Duration
}

func NewOTPService(
	stateStore repository.StateStore,
	userRepo repository.UserRepository,
	sender OTPSender,
	codeTTL, resendBackoff time.Duration,
) OTPService {
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}
	if resendBackoff <= 0 {
		resendBackoff = time.Minute
	}
	return &otpService{
		stateStore:    stateStore,
		userRepo:      userRepo,
		sender:        sender,
		codeTTL:       codeTTL,
		resendBackoff: resendBackoff,
	}
}

func (s *otpService) RequestCode(ctx context.Context, userID uuid.UUID, phone string) error {
	ok, err := s.stateStore.SetNX(ctx, otpBackoffKey(phone), []byte("1"), s.resendBackoff)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPResendTooSoon
	}

	code, err := crypto.GenerateOTPCode()
	if err != nil {
		return err
	}
	if err := s.stateStore.Set(ctx, otpCodeKey(phone), []byte(code), s.codeTTL); err != nil {
		return err
	}
	return s.sender.Send(ctx, phone, code)
}

func (s *otpService) VerifyCode(ctx context.Context, userID uuid.UUID, phone, code string) error {
	stored, err := s.stateStore.Get(ctx, otpCodeKey(phone))
	if err != nil {
		return err
	}
	if stored == nil || subtle.ConstantTimeCompare(stored, []byte(code)) != 1 {
		return ErrOTPInvalid
	}

	if err := s.stateStore.Delete(ctx, otpCodeKey(phone)); err != nil {
		return err
	}
	return s.userRepo.MarkPhoneVerified(ctx, userID)
}

func otpCodeKey(phone string) string    { return "otp:code:" + phone }
func otpBackoffKey(phone string) string { return "otp:backoff:" + phone }
