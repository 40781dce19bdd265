package router

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/handler"
	"github.com/stemsi/exstem-proctor/internal/middleware"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/validator"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Result   *handler.ResultHandler
	Monitor  *handler.MonitorHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the rate limiters' background sweeps.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	validator.Setup()

	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response gets a request ID and the noindex header, 404s included.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.NoIndex())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/robots.txt", handlers.System.Robots)

	submitLimiter := middleware.NewRateLimiter(ctx, cfg.SubmitRatePerMinute, time.Minute)
	loginLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRatePerMinute, time.Minute)

	// ─── 1. Exam API (Public) ──────────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.NoStore())
	{
		api.GET("/questions", handlers.Exam.GetQuestions)
		api.POST("/submit", submitLimiter.Middleware(), handlers.Exam.Submit)
	}

	// ─── 2. Admin Session (Public, Rate Limited) ───────────────────────
	adminAuth := api.Group("/admin")
	{
		adminAuth.POST("/login", loginLimiter.Middleware(), handlers.Auth.AdminLogin)
		adminAuth.POST("/logout", handlers.Auth.AdminLogout)
	}

	// ─── 3. Admin API (Session Cookie) ─────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(authService))
	{
		// Questions
		admin.GET("/questions", handlers.Question.ListQuestions)
		admin.POST("/questions", handlers.Question.AddQuestion)
		admin.POST("/questions/import", handlers.Question.ImportQuestions)
		admin.GET("/questions/export", handlers.Question.ExportQuestions)
		admin.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		admin.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Results
		admin.GET("/results", handlers.Result.ListResults)
		admin.GET("/results/export", handlers.Result.ExportResults)

		// Live monitor
		admin.GET("/monitor", handlers.Monitor.MonitorSSE)
	}

	// ─── 4. WebSocket (Exam Clients) ───────────────────────────────────
	router.GET("/ws/exam", handlers.WS.ExamWebSocketStream)

	// ─── 5. Static Pages ───────────────────────────────────────────────
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		router.NoRoute(middleware.CacheControl(300), gin.WrapH(staticHandler(cfg.StaticDir)))
	} else {
		log.Warn().Str("dir", cfg.StaticDir).Msg("Static directory not found, serving API only")
	}

	return router
}
