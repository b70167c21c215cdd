package handler

import (
	"github.com/gin-gonic/gin"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GetLimits returns the caller's usage against the current period's limit.
func (h *SubscriptionHandler) GetLimits(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	limits, err := h.subscriptionService.GetLimits(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load subscription limits")
		return
	}

	response.Success(c, limits)
}

// GetSubscription returns the caller's full subscriber record.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	sub, err := h.subscriptionService.GetSubscriber(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load subscription")
		return
	}

	response.Success(c, sub)
}

type tierInfo struct {
	Tier  model.Tier `json:"tier"`
	Label string     `json:"label"`
	model.TierDefinition
}

// GetPricing returns the static tier table. Public.
func (h *SubscriptionHandler) GetPricing(c *gin.Context) {
	tiers := make([]tierInfo, 0, 3)
	for _, tier := range model.AllTiers() {
		tiers = append(tiers, tierInfo{
			Tier:           tier,
			Label:          tier.Label(),
			TierDefinition: model.LimitsFor(tier),
		})
	}
	response.Success(c, tiers)
}
