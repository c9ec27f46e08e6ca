package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebaby/api/routes"
	"carebaby/internal/notifications"
	"carebaby/internal/shared/config"
	"carebaby/internal/shared/database"
	"carebaby/internal/shared/middleware"
	"carebaby/internal/synonyms"
	"carebaby/pkg/logger"
	"carebaby/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger = logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	// The synonym dictionary is reference data; the service cannot run without it.
	dict, err := synonyms.LoadOrDefault(cfg.Taxonomy.SynonymsPath)
	if err != nil {
		appLogger.Error("failed to load synonym dictionary", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Synonym dictionary loaded", slog.Int("entries", dict.Len()))

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			SuggestRequests: cfg.RateLimit.SuggestRequests,
			WriteRequests:   cfg.RateLimit.WriteRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.Redis, rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
			slog.Int("suggest_requests", cfg.RateLimit.SuggestRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	producer := newTagChangeProducer(cfg, appLogger)
	defer func() {
		if err := producer.Close(); err != nil {
			appLogger.Error("Error closing tag change producer", slog.Any("error", err))
		}
	}()

	router := setupRouter(cfg, db, dict, producer, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.String("api_version", cfg.APIVersion),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// newTagChangeProducer returns the Kafka producer, or a no-op one when Kafka is disabled or unreachable
func newTagChangeProducer(cfg *config.Config, appLogger *logger.Logger) notifications.TagChangeProducer {
	if !cfg.Kafka.Enabled {
		return notifications.NoopProducer{}
	}

	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.TagTopic
	producerConfig.RetryMax = cfg.Kafka.RetryMax

	producer, err := notifications.NewKafkaTagChangeProducer(producerConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Kafka producer, continuing without tag change events", slog.Any("error", err))
		return notifications.NoopProducer{}
	}

	appLogger.Info("Kafka tag change producer initialized", slog.String("topic", producerConfig.Topic))
	return producer
}

func setupRouter(cfg *config.Config, db *database.DB, dict *synonyms.Dictionary, producer notifications.TagChangeProducer, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery(), middleware.ProcessTime())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Process-Time-Ms", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	appRouter := routes.NewRouter(cfg, db, dict, producer, appLogger)
	appRouter.SetupRoutes(engine)

	return engine
}

// RequestLoggerMiddleware logs every request, tagged with X-Request-ID and the caller when known
func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLog := l
		if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
			reqLog = reqLog.WithRequestID(requestID)
		}
		if userID := middleware.UserID(c); userID != "" {
			reqLog = reqLog.WithUserID(userID)
		}
		reqLog.LogHTTPRequest(c, time.Since(start))
	}
}
