package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/transport/http/handlers"
	"github.com/kristinefung/personal-website-server/internal/transport/http/middleware"
	"github.com/kristinefung/personal-website-server/internal/usecase"
)

// Deps aggregates everything the router needs.
type Deps struct {
	Logger      *zap.Logger
	AuthService *usecase.AuthService
	UserService *usecase.UserService
	Metrics     *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	Health      *handlers.HealthHandler

	// LoginRateLimit bounds login requests per client IP within LoginRateWindow.
	// Zero disables throttling.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Register builds the HTTP routing tree on the provided engine.
func Register(engine *gin.Engine, deps Deps) {
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(deps.Logger))
	engine.Use(gin.Recovery())

	if deps.Metrics != nil {
		engine.Use(deps.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Health != nil {
		engine.GET("/healthz", deps.Health.Status)
		engine.GET("/readyz", deps.Health.Readiness)
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Metrics, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Logger)

	api := engine.Group("/api/v1")

	auth := api.Group("/auth")
	{
		login := auth.Group("")
		if deps.RateLimiter != nil && deps.LoginRateLimit > 0 {
			login.Use(deps.RateLimiter.RateLimit(middleware.RateLimitRule{
				Name:       "login",
				Limit:      deps.LoginRateLimit,
				Window:     deps.LoginRateWindow,
				Identifier: middleware.ClientIPIdentifier(),
			}))
		}
		login.POST("/login", authHandler.Login)

		auth.POST("/logout", authHandler.Logout)
	}

	users := api.Group("/users")
	{
		// Reads are open to any authenticated user; mutations are admin only.
		users.GET("", middleware.RequireAuth(deps.AuthService), userHandler.List)
		users.GET("/:id", middleware.RequireAuth(deps.AuthService), userHandler.Get)

		users.POST("", middleware.RequireAuth(deps.AuthService, domain.RoleAdmin), userHandler.Create)
		users.PUT("/:id", middleware.RequireAuth(deps.AuthService, domain.RoleAdmin), userHandler.Update)
		users.DELETE("/:id", middleware.RequireAuth(deps.AuthService, domain.RoleAdmin), userHandler.Delete)
	}
}
