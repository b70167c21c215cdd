package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agendly/bookhub/internal/config"
	"agendly/bookhub/internal/handler"
	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/repository"
	"agendly/bookhub/internal/service"
	jwtpkg "agendly/bookhub/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	userRepo := repository.NewPGUserRepository(db)
	subscriberRepo := repository.NewPGSubscriberRepository(db)
	affiliateRepo := repository.NewPGAffiliateRepository(db)
	businessRepo := repository.NewPGBusinessRepository(db)
	serviceRepo := repository.NewPGServiceRepository(db)
	availabilityRepo := repository.NewPGAvailabilityRepository(db)
	appointmentRepo := repository.NewPGAppointmentRepository(db)
	clientRepo := repository.NewPGClientRepository(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 8. Initialize services
	subscriptionService := service.NewSubscriptionService(subscriberRepo, affiliateRepo)
	completionPolicy := &service.VerifiedAgePolicy{MinAge: cfg.Referral.MinAge}
	affiliateService := service.NewAffiliateService(affiliateRepo, subscriberRepo, userRepo, completionPolicy)
	authService := service.NewAuthService(userRepo, stateStore, affiliateService, jwtManager)
	userService := service.NewUserService(userRepo)
	otpSender := &service.LogOTPSender{Logger: logger}
	otpService := service.NewOTPService(stateStore, userRepo, otpSender, cfg.OTP.CodeTTL, cfg.OTP.ResendBackoff)
	businessService := service.NewBusinessService(businessRepo, serviceRepo, availabilityRepo)
	bookingService := service.NewBookingService(
		appointmentRepo, clientRepo, businessRepo, serviceRepo, availabilityRepo,
		subscriptionService,
	)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, otpService, userService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	affiliateHandler := handler.NewAffiliateHandler(affiliateService)
	businessHandler := handler.NewBusinessHandler(businessService)
	appointmentHandler := handler.NewAppointmentHandler(bookingService)
	publicHandler := handler.NewPublicHandler(bookingService)
	webhookHandler := handler.NewWebhookHandler(subscriptionService, cfg.Billing.WebhookSecret, logger)
	adminHandler := handler.NewAdminHandler(subscriptionService, affiliateService, logger)

	// 10. Setup router
	router := handler.SetupRouter(
		cfg, logger, jwtManager,
		authHandler, subscriptionHandler, affiliateHandler,
		businessHandler, appointmentHandler, publicHandler,
		webhookHandler, adminHandler,
	)

	// 11. Background sweep: rolls over lapsed billing periods, expires lapsed
	// reward grants, and completes eligible referrals.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.Enabled {
		interval := cfg.Sweep.Interval
		if interval <= 0 {
			interval = time.Hour
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					rolled, err := subscriptionService.SweepExpired(sweepCtx)
					if err != nil {
						logger.Error("period sweep failed", zap.Error(err))
					} else if rolled > 0 {
						logger.Info("period sweep completed", zap.Int64("rolled_over", rolled))
					}
					if completed, err := affiliateService.CompleteEligible(sweepCtx); err != nil {
						logger.Error("referral completion sweep failed", zap.Error(err))
					} else if completed > 0 {
						logger.Info("referrals completed", zap.Int("count", completed))
					}
				}
			}
		}()
		logger.Info("background sweep enabled", zap.Duration("interval", interval))
	}

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
