package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/propconnect/propconnect/internal/auth"
	"github.com/propconnect/propconnect/internal/config"
	"github.com/propconnect/propconnect/internal/event"
	handler "github.com/propconnect/propconnect/internal/handler/http"
	"github.com/propconnect/propconnect/internal/repository"
	"github.com/propconnect/propconnect/internal/repository/postgres"
	rediscache "github.com/propconnect/propconnect/internal/repository/redis"
	"github.com/propconnect/propconnect/internal/service"
	"github.com/propconnect/propconnect/migrations"
	"github.com/propconnect/propconnect/pkg/database"
	"github.com/propconnect/propconnect/pkg/health"
	pkgkafka "github.com/propconnect/propconnect/pkg/kafka"
	"github.com/propconnect/propconnect/pkg/middleware"
	"github.com/propconnect/propconnect/pkg/tracing"
)

// App wires together all dependencies and runs the API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	tasks          *service.DetachedTasks
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(initCtx, cfg.Tracing(handler.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pool, err := Connect(initCtx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	if threshold := cfg.SlowQuery(); threshold > 0 {
		database.SetSlowQueryLogging(threshold, logger)
	}

	if err := database.RunMigrations(initCtx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// The listing cache is optional: without Redis every read goes to
	// PostgreSQL.
	var (
		redisClient *redis.Client
		cache       repository.ListingCache
	)
	redisClient, err = database.NewRedisClient(initCtx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, listing cache disabled", slog.String("error", err.Error()))
	} else {
		cache = rediscache.NewListingCache(redisClient, cfg.ListingCacheTTL)
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	hasher, err := auth.NewPasswordHasher(cfg.BcryptRounds)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("password hasher: %w", err), closeAll(pool, redisClient, producer))
	}
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("jwt manager: %w", err), closeAll(pool, redisClient, producer))
	}

	userRepo := postgres.NewUserRepository(pool)
	propertyRepo := postgres.NewPropertyRepository(pool)
	events := event.NewProducer(producer, logger)
	tasks := service.NewDetachedTasks(cfg.DetachedTaskTimeout, logger)

	authService := service.NewAuthService(userRepo, hasher, jwtManager, events, tasks, logger)
	propertyService := service.NewPropertyService(propertyRepo, cache, events, tasks, logger)
	guard := auth.NewSessionGuard(jwtManager, userRepo, logger)

	if cfg.SuperAdminEnabled {
		if _, err := authService.EnsureSuperAdmin(initCtx, superAdminInput(cfg)); err != nil {
			return nil, errors.Join(fmt.Errorf("bootstrap superadmin: %w", err), closeAll(pool, redisClient, producer))
		}
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, cfg.TrustProxyHeaders, logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:     authService,
		PropertyService: propertyService,
		TokenValidator:  guard.Validator(),
		Health:          healthHandler,
		Logger:          logger,
		CORS:            middleware.DefaultCORSConfig(cfg.FrontendURL),
		Cookie:          handler.CookieConfig{Secure: cfg.IsProduction(), TTL: jwtManager.TTL()},
		AuthLimiter:     limiter,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
		HSTS:            cfg.IsProduction(),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		limiter:        limiter,
		tasks:          tasks,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Detached tasks (last-login stamps, event publishes)
// 3. Rate limiter sweeper
// 4. Kafka producer
// 5. Redis and PostgreSQL
// 6. Tracer (flush spans recorded above)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.tasks.Wait(ctx); err != nil {
		a.logger.Warn("detached tasks still running at shutdown", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.limiter.Close()

	if err := closeAll(a.pool, a.redis, a.producer); err != nil {
		a.logger.Error("resource close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func closeAll(pool *pgxpool.Pool, redisClient *redis.Client, producer *pkgkafka.Producer) error {
	var errs []error
	if producer != nil {
		if err := producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	return errors.Join(errs...)
}

func superAdminInput(cfg *config.Config) service.SuperAdminInput {
	return service.SuperAdminInput{
		Email:    cfg.SuperAdminEmail,
		Phone:    cfg.SuperAdminPhone,
		Password: cfg.SuperAdminPassword,
		FullName: cfg.SuperAdminName,
	}
}
