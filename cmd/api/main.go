// Package main is the entrypoint for the Responder API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/responder/responder/internal/cache"
	"github.com/responder/responder/internal/config"
	"github.com/responder/responder/internal/dispatchlog"
	"github.com/responder/responder/internal/handler"
	"github.com/responder/responder/internal/metrics"
	"github.com/responder/responder/internal/middleware"
	"github.com/responder/responder/internal/repository"
	"github.com/responder/responder/internal/server"
	"github.com/responder/responder/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	eventRepo := repository.NewDispatchEventRepository(repo)
	registry := service.NewEndpointRegistry(repo, cacheClient, metricsRecorder)
	dispatcher := service.NewDispatcher(repo, cacheClient, metricsRecorder)
	ownerService := service.NewOwnerService(repo)
	publisher := dispatchlog.NewPublisher(cacheClient.Client(), logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	endpointHandler := handler.NewEndpointHandler(registry, logger)
	responderHandler := handler.NewResponderHandler(dispatcher, publisher, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(ownerService, logger)
	adminHandler := handler.NewAdminHandler(ownerService, logger)
	callsHandler := handler.NewCallsHandler(eventRepo, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		base:      h,
		health:    healthHandler,
		endpoints: endpointHandler,
		responder: responderHandler,
		apiKeys:   apiKeyHandler,
		admin:     adminHandler,
		calls:     callsHandler,
		metrics:   metricsHandler,
		repo:      repo,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Dispatch log worker consumes the event stream in the background.
	if cfg.DispatchLogEnabled {
		worker := dispatchlog.NewWorker(
			cacheClient.Client(),
			eventRepo,
			logger,
			dispatchlog.NewConsumerID(),
			metricsRecorder,
		)
		worker.SetBatchSize(cfg.DispatchLogBatchSize)
		worker.SetBlockTimeout(cfg.DispatchLogBlockTimeout)
		worker.SetClaimInterval(cfg.DispatchLogClaimInterval)

		workerCtx, cancelWorker := context.WithCancel(ctx)
		go func() {
			if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("dispatch log worker stopped", "error", err)
			}
		}()
		srv.OnShutdown("dispatchlog-worker", func(shutdownCtx context.Context) error {
			cancelWorker()
			return worker.Shutdown(shutdownCtx)
		})
		logger.Info("dispatch log worker started")
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	endpoints *handler.EndpointHandler
	responder *handler.ResponderHandler
	apiKeys   *handler.APIKeyHandler
	admin     *handler.AdminHandler
	calls     *handler.CallsHandler
	metrics   *handler.MetricsHandler
	repo      *repository.Repository
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:               deps.logger,
		Cache:                deps.cache,
		APIEnabled:           deps.cfg.RateLimitAPIEnabled,
		APIRequestsPerMinute: deps.cfg.RateLimitAPIPerMinute,
		APIBurst:             deps.cfg.RateLimitAPIBurst,
		DispatchEnabled:      deps.cfg.RateLimitDispatchEnabled,
		DispatchRPS:          deps.cfg.RateLimitDispatchRPS,
		DispatchBurst:        deps.cfg.RateLimitDispatchBurst,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		// Endpoint management
		r.Route("/endpoints", func(r chi.Router) {
			r.Get("/", deps.endpoints.List)
			r.Post("/", deps.endpoints.Create)
			r.Get("/{id}", deps.endpoints.Get)
			r.Patch("/{id}", deps.endpoints.Update)
			r.Delete("/{id}", deps.endpoints.Delete)
			r.Get("/{id}/calls", deps.calls.List)
		})

		// API key management for the caller's own account
		r.Post("/api-key", deps.apiKeys.Rotate)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.logger))
			r.Post("/owners", deps.admin.CreateOwner)
			r.Get("/owners/{id}", deps.admin.GetOwner)
			r.Post("/owners/{id}/api-key", deps.admin.IssueAPIKey)
			r.Delete("/owners/{id}", deps.admin.DeactivateOwner)
			r.Get("/stats", deps.admin.Stats)
		})
	})

	// Runtime dispatch path with IP-based rate limiting (no management auth;
	// the x-api-key header is checked per endpoint by the dispatcher).
	r.With(middleware.RateLimitIP(rateLimitCfg)).HandleFunc("/responder/{ownerToken}/{slug}", deps.responder.Dispatch)

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
