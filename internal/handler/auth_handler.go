package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	otpService  service.OTPService
	userService service.UserService
}

func NewAuthHandler(authService service.AuthService, otpService service.OTPService, userService service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		otpService:  otpService,
		userService: userService,
	}
}

type RegisterRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
		SourceIP:     c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrPhoneAlreadyRegistered) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, "failed to register")
		return
	}

	response.Success(c, user)
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid phone or password")
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, tokens)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) || errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, "refresh token invalid or revoked")
			return
		}
		response.InternalError(c, "failed to refresh token")
		return
	}

	response.Success(c, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			response.Unauthorized(c, "refresh token invalid")
			return
		}
		response.InternalError(c, "failed to logout")
		return
	}

	response.Success(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, user)
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to update profile")
		return
	}

	response.Success(c, user)
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load profile")
		return
	}

	if err := h.otpService.RequestCode(c.Request.Context(), userID, user.Phone); err != nil {
		if errors.Is(err, service.ErrOTPResendTooSoon) {
			response.TooManyRequests(c, "verification code requested too recently")
			return
		}
		response.InternalError(c, "failed to send verification code")
		return
	}

	response.Success(c, nil)
}

type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load profile")
		return
	}

	if err := h.otpService.VerifyCode(c.Request.Context(), userID, user.Phone, req.Code); err != nil {
		if errors.Is(err, service.ErrOTPInvalid) {
			response.BadRequest(c, "verification code invalid or expired")
			return
		}
		response.InternalError(c, "failed to verify code")
		return
	}

	response.Success(c, nil)
}
