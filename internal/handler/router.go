package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agendly/bookhub/internal/config"
	"agendly/bookhub/internal/handler/middleware"
	jwtpkg "agendly/bookhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	subscriptionHandler *SubscriptionHandler,
	affiliateHandler *AffiliateHandler,
	businessHandler *BusinessHandler,
	appointmentHandler *AppointmentHandler,
	publicHandler *PublicHandler,
	webhookHandler *WebhookHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth routes
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Public booking page and pricing
	public := r.Group("/api/v1/public")
	{
		public.GET("/pricing", subscriptionHandler.GetPricing)
		public.GET("/:slug", publicHandler.GetPage)
		public.POST("/:slug/appointments", publicHandler.CreateAppointment)
	}

	// Billing provider callback (shared secret, no user token)
	r.POST("/webhooks/billing", webhookHandler.HandleBillingEvent)

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/me", authHandler.UpdateMe)
		protected.POST("/auth/otp/request", authHandler.RequestOTP)
		protected.POST("/auth/otp/verify", authHandler.VerifyOTP)

		// Subscription and usage
		protected.GET("/subscription", subscriptionHandler.GetSubscription)
		protected.GET("/subscription/limits", subscriptionHandler.GetLimits)

		// Affiliate program
		protected.GET("/affiliate/stats", affiliateHandler.GetStats)
		protected.POST("/affiliate/redeem", affiliateHandler.RedeemCredits)
		protected.GET("/affiliate/rewards", affiliateHandler.ListRewards)

		// Business profile
		protected.POST("/business", businessHandler.Create)
		protected.GET("/business", businessHandler.Get)
		protected.PUT("/business", businessHandler.Update)

		// Services
		protected.POST("/business/services", businessHandler.CreateService)
		protected.GET("/business/services", businessHandler.ListServices)
		protected.PUT("/business/services/:id", businessHandler.UpdateService)
		protected.DELETE("/business/services/:id", businessHandler.DeleteService)

		// Availability
		protected.GET("/business/availability", businessHandler.ListAvailability)
		protected.PUT("/business/availability", businessHandler.SetAvailability)
		protected.POST("/business/unavailable-dates", businessHandler.AddUnavailableDate)
		protected.GET("/business/unavailable-dates", businessHandler.ListUnavailableDates)
		protected.DELETE("/business/unavailable-dates/:id", businessHandler.RemoveUnavailableDate)

		// Appointments
		protected.POST("/appointments", appointmentHandler.Create)
		protected.GET("/appointments", appointmentHandler.List)
		protected.PUT("/appointments/:id", appointmentHandler.Update)
		protected.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
		protected.DELETE("/appointments/:id", appointmentHandler.Cancel)

		// Clients
		protected.GET("/clients", appointmentHandler.ListClients)
		protected.PUT("/clients/:id", appointmentHandler.UpdateClient)
		protected.DELETE("/clients/:id", appointmentHandler.DeleteClient)
	}

	// Admin routes (JWT + admin check)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuth(jwtManager))
	admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
	{
		admin.POST("/sweep", adminHandler.TriggerSweep)
		admin.GET("/referrals", adminHandler.ListReferrals)
		admin.POST("/referrals/:id/complete", adminHandler.CompleteReferral)
		admin.POST("/referrals/complete-eligible", adminHandler.CompleteEligible)
	}

	return r
}
