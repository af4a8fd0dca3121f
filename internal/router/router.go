package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/handler"
	"github.com/imtihan/imtihan-backend/internal/middleware"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Direction *handler.DirectionHandler
	Session   *handler.SessionHandler
	Result    *handler.ResultHandler
	Admin     *handler.AdminHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService))
	{
		userAPI.GET("/me", handlers.Auth.GetProfile)

		userAPI.GET("/directions", handlers.Direction.List)
		userAPI.GET("/directions/:id", handlers.Direction.Get)
		userAPI.GET("/directions/:id/leaderboard", handlers.Result.Leaderboard)

		userAPI.POST("/sessions", handlers.Session.Start)
		userAPI.GET("/sessions/:id", handlers.Session.GetState)
		userAPI.PUT("/sessions/:id/answers", handlers.Session.SubmitAnswer)
		userAPI.POST("/sessions/:id/complete", handlers.Session.Complete)
		userAPI.GET("/sessions/:id/result", handlers.Session.GetResult)
		userAPI.POST("/sessions/:id/flags", handlers.Session.ReportCheat)

		userAPI.GET("/results", handlers.Result.History)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/directions/:id/monitor", handlers.Monitor.MonitorDirection)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/sessions/:id", handlers.Admin.GetSessionState)
		adminAPI.GET("/sessions/:id/flags", handlers.Admin.GetSessionFlags)
	}

	return router
}
