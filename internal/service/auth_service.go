package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
	"agendly/bookhub/pkg/crypto"
	jwtpkg "agendly/bookhub/pkg/jwt"
)

// TokenSet represents a set of tokens returned after authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterInput carries everything signup needs. ReferralCode is optional;
// SourceIP travels with it for downstream fraud review.
type RegisterInput struct {
	FullName     string
	Phone        string
	Email        string
	Password     string
	ReferralCode string
	SourceIP     string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, phone, password string) (*TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo         repository.UserRepository
	stateStore       repository.StateStore
	affiliateService AffiliateService
	jwtManager       *jwtpkg.Manager
}

func NewAuthService(
	userRepo repository.UserRepository,
	stateStore repository.StateStore,
	affiliateService AffiliateService,
	jwtManager *jwtpkg.Manager,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		stateStore:       stateStore,
		affiliateService: affiliateService,
		jwtManager:       jwtManager,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if _, err := s.userRepo.GetByPhone(ctx, input.Phone); err == nil {
		return nil, ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FullName:     input.FullName,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Referral attribution happens at signup or not at all. A bad code must
	// not block registration.
	if input.ReferralCode != "" {
		_, err := s.affiliateService.ProcessReferralSignup(ctx, user.ID, input.ReferralCode, input.SourceIP)
		if err != nil && !errors.Is(err, ErrReferralCodeNotFound) &&
			!errors.Is(err, ErrSelfReferral) && !errors.Is(err, ErrDuplicateReferral) {
			return nil, err
		}
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, phone, password string) (*TokenSet, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	active, err := s.stateStore.Exists(ctx, refreshTokenKey(claims.ID))
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrRefreshTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is spent.
	if err := s.stateStore.Delete(ctx, refreshTokenKey(claims.ID)); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return ErrRefreshTokenInvalid
	}
	return s.stateStore.Delete(ctx, refreshTokenKey(claims.ID))
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenSet, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.stateStore.Set(ctx, refreshTokenKey(claims.ID), []byte(user.ID.String()), s.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, err
	}

	return &TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL() / time.Second),
	}, nil
}

func refreshTokenKey(jti string) string {
	return "refresh_token:" + jti
}
