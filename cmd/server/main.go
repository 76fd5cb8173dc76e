package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/benvon/todo-chat/internal/config"
	"github.com/benvon/todo-chat/internal/handlers"
	"github.com/benvon/todo-chat/internal/logger"
	"github.com/benvon/todo-chat/internal/middleware"
	"github.com/benvon/todo-chat/internal/storage"
	"github.com/benvon/todo-chat/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	openAPIPath := flag.String("openapi", handlers.DefaultOpenAPIPath, "Path to the OpenAPI document")
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
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.String("version", handlers.Version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Bool("events_enabled", cfg.RabbitMQURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracingEnabled := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, handlers.Version, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracingEnabled = true
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

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	application, err := app.Build(startupCtx, cfg, zapLogger, app.Options{DebugMode: debugMode})
	startupCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_start_application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			zapLogger.Warn("failed_to_close_application", zap.Error(err))
		}
	}()

	redisClient, closeRedis := rateLimitRedis(cfg, application.Store, zapLogger)
	defer closeRedis()
	rateLimitMW, err := middleware.RateLimit(cfg.ChatRateLimit, redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	healthChecker := handlers.NewHealthChecker(map[string]handlers.CheckFunc{
		"storage": application.Store.Ping,
		"events":  application.Publisher.HealthCheck,
	}, zapLogger)
	chatHandler := handlers.NewChatHandler(application.Conversation, zapLogger)

	r := mux.NewRouter()

	if tracingEnabled {
		r.Use(telemetry.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL, zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger))
	r.Use(middleware.ContentType(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionInfo).Methods(http.MethodGet)
	handlers.NewOpenAPIHandler(*openAPIPath, zapLogger).RegisterRoutes(r)
	chatHandler.RegisterRoutes(r, rateLimitMW)

	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// A turn waits on the completion backend, so writes get the backend timeout plus headroom
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   cfg.AITimeout + 15*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	zapLogger.Info("server_exited")
}

// rateLimitRedis returns the Redis client the rate limiter shares, or nil for in-memory
// counters. The returned func closes a client opened here and is a no-op otherwise.
func rateLimitRedis(cfg *config.Config, store storage.Store, zapLogger *zap.Logger) (*redis.Client, func()) {
	if rs, ok := store.(*storage.RedisStore); ok {
		return rs.Client(), func() {}
	}
	if cfg.RedisURL == "" {
		zapLogger.Info("rate_limit_store", zap.String("store", "memory"))
		return nil, func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	zapLogger.Info("rate_limit_store", zap.String("store", "redis"))

	return client, func() {
		if err := client.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}
}
