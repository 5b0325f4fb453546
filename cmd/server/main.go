package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/config"
	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/handlers"
	"github.com/AnshRaj112/ai-journal-backend/internal/logging"
	"github.com/AnshRaj112/ai-journal-backend/internal/metrics"
	"github.com/AnshRaj112/ai-journal-backend/internal/middleware"
	"github.com/AnshRaj112/ai-journal-backend/internal/routes"
	"github.com/AnshRaj112/ai-journal-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	m := metrics.New()

	logger.Info("Connecting to database...")
	store, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	// Redis is optional
	var (
		redisClient *redis.Client
		authLimiter middleware.Limiter
		cache       services.Cache
	)
	if cfg.RedisURI != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		authLimiter = middleware.NewRedisLimiter(redisClient, cfg.AuthRateLimit, cfg.AuthRateWindow)
		cache = services.NewRedisCache(redisClient)
		logger.Info("✅ Redis connected; rate limits and mood insights are shared")
	} else {
		local := middleware.NewLocalLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
		defer local.Close()
		authLimiter = local
		logger.Warn("REDIS_URI not set; using in-process rate limiting and no insights cache")
	}

	var globalLimiter *middleware.IPLimiter
	if cfg.IsProduction() {
		globalLimiter = middleware.NewIPLimiter(1, 10)
		defer globalLimiter.Close()
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	ai := services.NewAIClient(services.AIOptions{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, m, logger)
	insights := services.NewInsightsService(store, cache, logger)
	entries := services.NewEntryService(store, ai, logger,
		services.WithMaxContentLength(cfg.MaxContentLength),
		services.WithInvalidator(insights),
		services.WithEntryMetrics(m),
	)
	auth := services.NewAuthService(store, tokens, logger)

	router := routes.NewRouter(routes.Dependencies{
		Auth:           handlers.NewAuthHandler(auth, logger),
		Journal:        handlers.NewJournalHandler(entries, insights, logger),
		Health:         handlers.NewHealthHandler(store, logger),
		Tokens:         tokens,
		AuthLimiter:    authLimiter,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		Production:     cfg.IsProduction(),
		AllowedHost:    cfg.AllowedHost,
		GlobalLimiter:  globalLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// analysis calls can take up to the AI timeout
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 AI journal backend running",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Environment),
			zap.String("model", cfg.AI.Model),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
