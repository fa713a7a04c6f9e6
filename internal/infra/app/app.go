package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/core/port"
	"github.com/kristinefung/personal-website-server/internal/infra/config"
	"github.com/kristinefung/personal-website-server/internal/infra/database"
	"github.com/kristinefung/personal-website-server/internal/infra/kafka"
	infraRedis "github.com/kristinefung/personal-website-server/internal/infra/redis"
	"github.com/kristinefung/personal-website-server/internal/infra/security"
	pgrepo "github.com/kristinefung/personal-website-server/internal/repository/postgres"
	redisrepo "github.com/kristinefung/personal-website-server/internal/repository/redis"
	"github.com/kristinefung/personal-website-server/internal/transport/http/handlers"
	"github.com/kristinefung/personal-website-server/internal/transport/http/middleware"
	"github.com/kristinefung/personal-website-server/internal/transport/http/routes"
	"github.com/kristinefung/personal-website-server/internal/usecase"
)

// App owns the service's long-lived resources and the HTTP server.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	pool     *pgxpool.Pool
	redis    *infraRedis.Client
	producer *kafka.Producer
	server   *http.Server
}

// New assembles the full dependency graph from configuration. Callers must
// have validated cfg beforehand; in particular the JWT secret is required.
func New(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*App, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: log,
		pool:   pool,
	}

	hasher, err := security.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure password hasher: %w", err)
	}

	issuer, err := security.NewTokenIssuer(cfg.JWT.Secret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure token issuer: %w", err)
	}

	events, err := a.buildEventPublisher()
	if err != nil {
		a.Close()
		return nil, err
	}

	repos := pgrepo.NewRepositories(pool)

	authService := usecase.NewAuthService(
		repos.Users, repos.LoginLogs, hasher, issuer, events, log)
	userService := usecase.NewUserService(
		repos.Users, hasher, security.NewPasswordPolicy(), events, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure metrics: %w", err)
	}

	rateLimiter, err := a.buildRateLimiter()
	if err != nil {
		a.Close()
		return nil, err
	}

	healthOpts := []handlers.HealthOption{
		handlers.WithReadinessCheck("postgres", pool.Ping),
	}
	if a.redis != nil {
		healthOpts = append(healthOpts, handlers.WithReadinessCheck("redis", a.redis.HealthCheck))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	routes.Register(engine, routes.Deps{
		Logger:          log,
		AuthService:     authService,
		UserService:     userService,
		Metrics:         metrics,
		RateLimiter:     rateLimiter,
		Health:          handlers.NewHealthHandler(cfg.App.Name, healthOpts...),
		LoginRateLimit:  cfg.RateLimit.LoginMaxAttempts,
		LoginRateWindow: cfg.RateLimit.WindowDuration,
	})

	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port)),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// buildEventPublisher selects Kafka when brokers are configured, otherwise the
// logging stub so the rest of the service never has to branch.
func (a *App) buildEventPublisher() (port.EventPublisher, error) {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub event publisher")
		return kafka.NewStubPublisher(a.logger), nil
	}

	producer, err := kafka.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	a.producer = producer

	return kafka.NewEventPublisher(producer, a.cfg.App, a.logger), nil
}

// buildRateLimiter returns a nil limiter when Redis is disabled; the router
// treats that as throttling off.
func (a *App) buildRateLimiter() (*middleware.RateLimiter, error) {
	if !a.cfg.Redis.Enabled {
		a.logger.Info("redis disabled, login throttling is off")
		return nil, nil
	}

	client, err := infraRedis.NewClient(a.cfg.Redis, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client

	store := redisrepo.NewLoginThrottle(client.Client(), a.cfg.RateLimit.WindowDuration*2)

	return middleware.NewRateLimiter(store, a.logger), nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return <-errCh
}

// Close releases every long-lived resource. Safe to call on a partially
// constructed App.
func (a *App) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
