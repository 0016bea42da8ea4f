package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/config"
	"github.com/nestodo/nestodo/internal/handlers"
	"github.com/nestodo/nestodo/internal/logger"
	"github.com/nestodo/nestodo/internal/middleware"
	"github.com/nestodo/nestodo/internal/services/ai"
	"github.com/nestodo/nestodo/internal/services/auth"
	"github.com/nestodo/nestodo/internal/services/todos"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/nestodo/nestodo/internal/storage/postgres"
	"github.com/nestodo/nestodo/internal/storage/redisdoc"
	"github.com/nestodo/nestodo/internal/telemetry"
)

const serviceName = "nestodo-api"

// Injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing, optional.
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Storage backend, selected by configuration.
	store, err := openStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
	}()
	zapLogger.Info("storage_connected", zap.String("backend", cfg.StorageBackend))

	// Redis client for rate limiting, optional.
	var redisClient *redis.Client
	if cfg.RateLimitOn {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		pingCancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	// AI provider. Generation degrades to fixed fallbacks without it.
	var aiProvider ai.Provider
	if cfg.OpenAIKey != "" {
		aiProvider = ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
		zapLogger.Info("ai_provider_initialized", zap.String("model", cfg.AIModel))
	} else {
		zapLogger.Warn("openai_key_not_configured_using_fallback_content")
	}

	// Services.
	authService := auth.New(store, cfg.JWTSecret, cfg.TokenTTL, zapLogger)
	todoService := todos.New(store, aiProvider, zapLogger)

	// Handlers.
	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)
	healthChecker := handlers.NewHealthChecker(store, redisPinger(redisClient))

	// Router and middleware chain.
	r := mux.NewRouter()
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		rateLimitMW, err = middleware.RateLimit(redisClient, cfg.RateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
	}

	// Public routes.
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.Version(handlers.VersionInfo{Version: version, Commit: commit})).Methods("GET")

	// Auth routes, rate limited but unauthenticated.
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter)

	// Todo routes, authenticated and rate limited.
	todosRouter := r.PathPrefix("/todos").Subrouter()
	todosRouter.Use(middleware.Auth(authService, zapLogger))
	todosRouter.Use(rateLimitMW)
	todoHandler.RegisterRoutes(todosRouter)

	// Catch-all OPTIONS handler so preflights succeed on every route.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// openStore connects the backend named in the configuration.
func openStore(cfg *config.Config, zapLogger *zap.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		store.SetLogger(zapLogger)
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Migrate(migrateCtx); err != nil {
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisdoc.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redisdoc: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// redisPinger adapts the client for the health checker; a nil client
// yields a nil Pinger so the check is skipped.
func redisPinger(client *redis.Client) handlers.Pinger {
	if client == nil {
		return nil
	}
	return pingAdapter{client}
}

type pingAdapter struct {
	client *redis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
