package service

import "errors"

var (
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRefreshTokenInvalid    = errors.New("refresh token invalid or revoked")
	ErrUserNotFound           = errors.New("user not found")
	ErrOTPInvalid             = errors.New("verification code invalid or expired")
	ErrOTPResendTooSoon       = errors.New("verification code requested too recently")

	ErrLimitExceeded = errors.New("monthly appointment limit reached")

	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrSelfReferral         = errors.New("cannot use own referral code")
	ErrDuplicateReferral    = errors.New("user already referred")
	ErrReferralNotFound     = errors.New("referral not found")
	ErrReferralNotEligible  = errors.New("referral not yet eligible for completion")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrInvalidRewardType    = errors.New("unknown reward type")
	ErrInvalidTier          = errors.New("unknown subscription tier")

	ErrBusinessNotFound     = errors.New("business not found")
	ErrBusinessExists       = errors.New("business already exists for user")
	ErrSlugTaken            = errors.New("business slug already taken")
	ErrInvalidSlug          = errors.New("business slug must be lowercase letters, digits and hyphens")
	ErrServiceNotFound      = errors.New("service not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrNotOwner             = errors.New("resource does not belong to this user")
	ErrBusinessInactive     = errors.New("business is not accepting bookings")
)
