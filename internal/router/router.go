package router

import (
	"log"
	"net/http"
	"time"

	"rishta/config"
	"rishta/internal/handler"
	"rishta/internal/middleware"
	"rishta/internal/repository"
	"rishta/internal/service"
	"rishta/internal/ws"
	"rishta/pkg/cloudinary"
	"rishta/pkg/payment"
	"rishta/pkg/telephony"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, callProvider telephony.Provider, payProvider payment.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Call initiation dials the telephony provider, so it gets a much
	// tighter per-user budget than the global limit.
	initiateLimit := middleware.RateLimit(middleware.NewRateLimiter(5, 60*time.Second))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	interestRepo := repository.NewInterestRepository(db)
	callRepo := repository.NewCallRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	callHub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	callSvc := service.NewCallService(&cfg.Telephony, callProvider, callRepo, creditRepo, userRepo, profileRepo, interestRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, auditRepo)
	meHandler := handler.NewMeHandler(userRepo, profileRepo, creditRepo)
	searchHandler := handler.NewSearchHandler(&cfg.Matching, candidateRepo, interestRepo)
	interestHandler := handler.NewInterestHandler(interestRepo, profileRepo, userRepo, notifSvc)
	callHandler := handler.NewCallHandler(callSvc, callRepo)
	callWebhookHandler := handler.NewCallWebhookHandler(callSvc, profileRepo, auditRepo, notifSvc, callHub)
	paymentHandler := handler.NewPaymentHandler(&cfg.Payment, payProvider, paymentRepo, userRepo)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(&cfg.Payment, paymentRepo, creditRepo, auditRepo, notifSvc)
	adminHandler := handler.NewAdminHandler(userRepo, profileRepo, paymentRepo, auditRepo, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud, profileRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("", meHandler.Get)
			me.GET("/profile", meHandler.GetProfile)
			me.PUT("/profile", meHandler.UpsertProfile)
			me.POST("/profile/photo", uploadHandler.UploadProfilePhoto)
			me.PATCH("/phone", meHandler.UpdatePhone)
			me.POST("/fcm-token", meHandler.UpdateFCMToken)
			me.GET("/credits", meHandler.GetCredits)
			me.GET("/matches", searchHandler.Matches)
			me.GET("/interests/incoming", interestHandler.ListIncoming)
			me.GET("/interests/outgoing", interestHandler.ListOutgoing)
			me.GET("/calls", callHandler.History)
			me.GET("/payments", paymentHandler.History)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.GET("/search", authMw, searchHandler.Search)
		api.POST("/interests", authMw, interestHandler.Send)
		api.POST("/interests/:id/accept", authMw, interestHandler.Accept)
		api.POST("/interests/:id/decline", authMw, interestHandler.Decline)

		api.POST("/calls/initiate", authMw, initiateLimit, callHandler.Initiate)
		api.GET("/calls/sessions/:id", authMw, callHandler.GetSession)

		api.GET("/payments/packages", paymentHandler.ListPackages)
		api.POST("/payments/initiate", authMw, paymentHandler.Initiate)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole("ADMIN"))
		{
			admin.GET("/profiles", adminHandler.ListProfiles)
			admin.POST("/profiles/:id/approve", adminHandler.ApproveProfile)
			admin.POST("/profiles/:id/reject", adminHandler.RejectProfile)
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/suspend", adminHandler.SuspendUser)
			admin.POST("/users/:id/activate", adminHandler.ActivateUser)
			admin.GET("/payments", adminHandler.ListPayments)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}

		api.POST("/webhooks/call", callWebhookHandler.HandleStatus)
		api.POST("/webhooks/payment", paymentWebhookHandler.HandleStatus)
	}

	r.GET("/ws/calls", ws.UpgradeCallWS(&cfg.JWT, callHub))

	return r
}
