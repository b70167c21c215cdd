package handler

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

// WebhookHandler receives billing events from the payment provider. It is
// authenticated by a shared secret header, not by a user token.
type WebhookHandler struct {
	subscriptionService service.SubscriptionService
	secret              string
	logger              *zap.Logger
}

func NewWebhookHandler(subscriptionService service.SubscriptionService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		secret:              secret,
		logger:              logger,
	}
}

type BillingEventRequest struct {
	UserID          uuid.UUID  `json:"user_id" binding:"required"`
	Tier            string     `json:"tier" binding:"required"`
	Subscribed      bool       `json:"subscribed"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
}

func (h *WebhookHandler) HandleBillingEvent(c *gin.Context) {
	provided := c.GetHeader("X-Webhook-Secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		response.Unauthorized(c, "invalid webhook secret")
		return
	}

	var req BillingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	update := service.BillingUpdate{
		UserID:          req.UserID,
		Tier:            model.Tier(req.Tier),
		Subscribed:      req.Subscribed,
		SubscriptionEnd: req.SubscriptionEnd,
	}
	if err := h.subscriptionService.ApplyBillingUpdate(c.Request.Context(), update); err != nil {
		if errors.Is(err, service.ErrInvalidTier) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("billing update failed",
			zap.String("user_id", req.UserID.String()),
			zap.String("tier", req.Tier),
			zap.Error(err))
		response.InternalError(c, "failed to apply billing update")
		return
	}

	h.logger.Info("billing update applied",
		zap.String("user_id", req.UserID.String()),
		zap.String("tier", req.Tier),
		zap.Bool("subscribed", req.Subscribed))
	response.Success(c, nil)
}
