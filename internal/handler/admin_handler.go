package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

type AdminHandler struct {
	subscriptionService service.SubscriptionService
	affiliateService    service.AffiliateService
	logger              *zap.Logger
}

func NewAdminHandler(subscriptionService service.SubscriptionService, affiliateService service.AffiliateService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		subscriptionService: subscriptionService,
		affiliateService:    affiliateService,
		logger:              logger,
	}
}

// TriggerSweep runs the period rollover and reward expiry batch on demand.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	rolled, err := h.subscriptionService.SweepExpired(c.Request.Context())
	if err != nil {
		h.logger.Error("manual sweep failed", zap.Error(err))
		response.InternalError(c, "sweep failed")
		return
	}

	response.Success(c, gin.H{"rolled_over": rolled})
}

// ListReferrals exposes the raw referral ledger, source IP included, for
// fraud review.
func (h *AdminHandler) ListReferrals(c *gin.Context) {
	referrals, err := h.affiliateService.ListReferrals(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list referrals")
		return
	}

	response.Success(c, referrals)
}

// CompleteReferral force-completes a single referral regardless of policy.
func (h *AdminHandler) CompleteReferral(c *gin.Context) {
	referralID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid referral id")
		return
	}

	credits, err := h.affiliateService.CompleteReferral(c.Request.Context(), referralID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralNotFound):
			response.NotFound(c, "referral not found")
		case errors.Is(err, service.ErrReferralNotEligible):
			response.Conflict(c, "referral already completed")
		default:
			response.InternalError(c, "failed to complete referral")
		}
		return
	}

	response.Success(c, gin.H{"credits_awarded": credits})
}

// CompleteEligible completes every pending referral that passes the
// completion policy.
func (h *AdminHandler) CompleteEligible(c *gin.Context) {
	completed, err := h.affiliateService.CompleteEligible(c.Request.Context())
	if err != nil {
		h.logger.Error("bulk referral completion failed", zap.Error(err))
		response.InternalError(c, "failed to complete referrals")
		return
	}

	response.Success(c, gin.H{"completed": completed})
}
