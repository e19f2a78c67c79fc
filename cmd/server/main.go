package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/smart-todo/smart-todo-list/internal/config"
	"github.com/smart-todo/smart-todo-list/internal/database"
	"github.com/smart-todo/smart-todo-list/internal/handlers"
	"github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/middleware"
	"github.com/smart-todo/smart-todo-list/internal/services/ai"
	"github.com/smart-todo/smart-todo-list/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "smart-todo-list"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including AI prompts and replies")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *debugFlag {
		cfg.ServerDebugMode = true
	}

	zapLogger, err := logger.New(cfg.LogFormat, cfg.ServerDebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", cfg.ServerDebugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("base_url", cfg.BaseURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracerProvider := initTracing(cfg, zapLogger)
	if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
				zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
			}
		}()
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.String("error", logger.SanitizeError(err)))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.EnsureSchema(migrateCtx)
		cancel()
		if err != nil {
			zapLogger.Fatal("failed_to_apply_schema", zap.Error(err))
		}
		zapLogger.Info("schema_applied")
	}

	// Redis is optional. Without it rate limits are tracked per process.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.String("error", logger.SanitizeError(err)))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitMW, err := middleware.RateLimit(rateLimitStore, cfg.RateLimit, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid_rate_limit", zap.String("rate", cfg.RateLimit), zap.Error(err))
	}

	aiService, err := ai.NewServiceFromConfig(cfg, ai.NewDefaultRegistry(), zapLogger)
	if err != nil {
		// Suggestions and analysis still work through their local fallbacks
		zapLogger.Warn("failed_to_create_ai_provider_ai_features_degraded", zap.Error(err))
		aiService = ai.NewService(nil, cfg.AITimeout, zapLogger)
	}

	taskRepo := database.NewTaskRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	contextRepo := database.NewContextEntryRepository(db)

	taskHandler := handlers.NewTaskHandler(taskRepo, categoryRepo, contextRepo, aiService, zapLogger)
	contextHandler := handlers.NewContextHandler(contextRepo, aiService, cfg.AnalyzeOnCreate, zapLogger)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, zapLogger)

	var redisPinger handlers.Pinger
	if redisClient != nil {
		redisPinger = handlers.RedisPinger(redisClient)
	}
	healthChecker := handlers.NewHealthChecker(db, redisPinger, aiService, zapLogger)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, the first registered
	// being the outermost wrapper.
	if tracerProvider != nil {
		r.Use(telemetry.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins(), zapLogger))
	r.Use(middleware.RequestID)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Service endpoints and the API document are not rate limited
	healthChecker.RegisterRoutes(r)
	handlers.NewOpenAPIHandler().RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())
	contextHandler.RegisterRoutes(apiRouter.PathPrefix("/context").Subrouter())
	categoryHandler.RegisterRoutes(apiRouter.PathPrefix("/categories").Subrouter())

	// Preflight requests reach here after the CORS middleware has set headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
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
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_stopped")
}

// initTracing starts the OTLP exporter when enabled. Tracing problems are
// logged and never stop the server.
func initTracing(cfg *config.Config, zapLogger *zap.Logger) *sdktrace.TracerProvider {
	if !cfg.OTELEnabled {
		return nil
	}
	if cfg.OTELEndpoint == "" {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		return nil
	}

	tp, err := telemetry.InitTracer(context.Background(), telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: handlers.Version,
		Endpoint:       cfg.OTELEndpoint,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return nil
	}
	zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	return tp
}
