package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlive-backend/internal/config"
	"github.com/stemsi/quizlive-backend/internal/handler"
	"github.com/stemsi/quizlive-backend/internal/middleware"
	"github.com/stemsi/quizlive-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	WS      *handler.WSHandler
	Session *handler.SessionHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger())
	// Panics become a typed 500 envelope instead of an empty body.
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
	}))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally; it skips WebSocket upgrades.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Unmatched paths get the same envelope as everything else.
	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws", handlers.WS.Stream)

	// ─── REST (rate limited against reconnect storms) ──────────────────
	limiter := middleware.NewRateLimiter(60, time.Minute)
	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		api.GET("/session", handlers.Session.GetSession)
	}

	return router
}
