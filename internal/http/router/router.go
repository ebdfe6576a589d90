package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/kp-backend/internal/config"
	"github.com/ignatzorin/kp-backend/internal/http/handlers"
	"github.com/ignatzorin/kp-backend/internal/http/middleware"
	"github.com/ignatzorin/kp-backend/internal/service"
)

// SetupRouter собирает все маршруты сервиса.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	proposalHandler *handlers.ProposalHandler,
	publicHandler *handlers.PublicHandler,
	uploadHandler *handlers.UploadHandler,
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
	r.StaticFS("/uploads", http.Dir(cfg.UploadsPath))

	api := r.Group("/api")

	// Вход администратора: жёсткий лимит против перебора пароля.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", authHandler.Login)
	}

	// Публичная страница предложения по токену.
	public := api.Group("/public")
	public.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		public.GET("/proposals/:token", publicHandler.GetByShareToken)
	}

	api.GET("/ws", wsHandler.Handle)

	// Управляющие маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/proposals", proposalHandler.ListProposals)
		protected.POST("/proposals", proposalHandler.CreateProposal)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.GetProposal)
		protected.GET("/proposals/:id/pdf", middleware.UUIDValidator("id"), proposalHandler.DownloadPDF)
		protected.POST("/uploads", uploadHandler.Upload)
	}

	return r
}
