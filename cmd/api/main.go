// Package main is the entrypoint for the exercise tracker API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/exercisetracker/exercisetracker/internal/cache"
	"github.com/exercisetracker/exercisetracker/internal/config"
	"github.com/exercisetracker/exercisetracker/internal/handler"
	"github.com/exercisetracker/exercisetracker/internal/metrics"
	"github.com/exercisetracker/exercisetracker/internal/middleware"
	"github.com/exercisetracker/exercisetracker/internal/repository"
	"github.com/exercisetracker/exercisetracker/internal/server"
	"github.com/exercisetracker/exercisetracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errStartup
	}
	logger.Info("connected to database")

	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		logger.Error("failed to apply schema", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		return errStartup
	}

	// Interface values stay nil when the cache is disabled so the service
	// and readiness probe skip it.
	var (
		userCache   service.UserCache
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cfg.UserCacheTTL)
		if err != nil {
			repo.Close()
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return errStartup
		}
		userCache = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis", "user_cache_ttl", cfg.UserCacheTTL)
	} else {
		logger.Info("user cache disabled")
	}

	metricsRecorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, userCache, logger, metricsRecorder)
	exerciseService := service.NewExerciseService(userService, repo, metricsRecorder, cfg.DefaultLogLimit)

	h := handler.New(logger)
	healthHandler := handler.NewHealthHandler(repo, cacheHealth)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	userHandler := handler.NewUserHandler(userService, logger)
	exerciseHandler := handler.NewExerciseHandler(exerciseService, logger)

	r := setupRouter(h, healthHandler, metricsHandler, userHandler, exerciseHandler, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.ListenPort(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.ListenPort(),
		"env", cfg.AppEnv,
		"user_cache", cfg.CacheEnabled(),
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "exercisetracker")
	slog.SetDefault(logger)

	return logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	userHandler *handler.UserHandler,
	exerciseHandler *handler.ExerciseHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(securityCfg.MaxRequestBodySize))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Probes and metrics
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Landing page
	r.Get("/", h.Index)
	r.Get("/public/*", h.Static)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.List)
		r.Post("/{id}/exercises", exerciseHandler.Add)
		r.Get("/{id}/logs", exerciseHandler.Log)
	})

	return r
}
