package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

type AffiliateHandler struct {
	affiliateService service.AffiliateService
}

func NewAffiliateHandler(affiliateService service.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{affiliateService: affiliateService}
}

// GetStats returns the caller's referral code, counts, and credit balance.
// Generates the referral code on first call.
func (h *AffiliateHandler) GetStats(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	stats, err := h.affiliateService.GetStats(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load affiliate stats")
		return
	}

	response.Success(c, stats)
}

type RedeemRequest struct {
	RewardType model.RewardType `json:"reward_type" binding:"required"`
}

func (h *AffiliateHandler) RedeemCredits(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	redeemed, err := h.affiliateService.RedeemCredits(c.Request.Context(), userID, req.RewardType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRewardType) {
			response.BadRequest(c, "unknown reward type")
			return
		}
		response.InternalError(c, "failed to redeem credits")
		return
	}
	if !redeemed {
		response.Error(c, http.StatusPaymentRequired, 402, "insufficient credits")
		return
	}

	response.Success(c, gin.H{"redeemed": true})
}

func (h *AffiliateHandler) ListRewards(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	rewards, err := h.affiliateService.ListActiveRewards(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load rewards")
		return
	}

	response.Success(c, rewards)
}
