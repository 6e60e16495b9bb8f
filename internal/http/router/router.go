package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-market/internal/config"
	"github.com/ignatzorin/freelance-market/internal/http/handlers"
	"github.com/ignatzorin/freelance-market/internal/http/middleware"
	"github.com/ignatzorin/freelance-market/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	projectHandler *handlers.ProjectHandler,
	proposalHandler *handlers.ProposalHandler,
	notificationHandler *handlers.NotificationHandler,
	statsHandler *handlers.StatsHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/wallet/register", authHandler.RegisterWallet)
		authGroup.POST("/wallet", authHandler.AuthenticateWallet)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
	api.GET("/users/:id", middleware.UUIDValidator("id"), profileHandler.GetProfile)
	api.GET("/freelancers", profileHandler.ListFreelancers)
	api.GET("/media/:id/file", middleware.UUIDValidator("id"), mediaHandler.Serve)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/profile", profileHandler.GetMyProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		protected.GET("/dashboard/stats", statsHandler.DashboardStats)

		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/my", projectHandler.ListMy)
		protected.GET("/projects/assignments", projectHandler.ListAssignments)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Update)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Delete)
		protected.PUT("/projects/:id/complete", middleware.UUIDValidator("id"), projectHandler.Complete)
		protected.PUT("/projects/:id/cancel", middleware.UUIDValidator("id"), projectHandler.Cancel)
		protected.PUT("/projects/:id/auto-accept", middleware.UUIDValidator("id"), projectHandler.SetAutoAccept)
		protected.POST("/projects/:id/submit", middleware.UUIDValidator("id"), projectHandler.SubmitWork)
		protected.GET("/projects/:id/submissions", middleware.UUIDValidator("id"), projectHandler.ListSubmissions)

		protected.POST("/projects/:id/auto-accept/evaluate", middleware.UUIDValidator("id"), proposalHandler.EvaluateAutoAccept)

		protected.POST("/proposals", proposalHandler.Submit)
		protected.GET("/proposals/my", proposalHandler.ListMy)
		protected.GET("/proposals/project/:projectId", middleware.UUIDValidator("projectId"), proposalHandler.ListByProject)
		protected.PUT("/proposals/:id/status", middleware.UUIDValidator("id"), proposalHandler.UpdateStatus)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/media", mediaHandler.Upload)
		protected.GET("/media/my", mediaHandler.ListMy)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
	}

	return r
}
