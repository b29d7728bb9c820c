package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tarim-kds/internal/config"
	"tarim-kds/internal/extract"
	"tarim-kds/internal/gemini"
	"tarim-kds/internal/handler"
	"tarim-kds/internal/llm"
	"tarim-kds/internal/middleware"
	"tarim-kds/internal/repository"
	"tarim-kds/internal/resolver"
	"tarim-kds/internal/schema"
	"tarim-kds/internal/service"
)

func main() {
	// Load .env if present; real deployments set the variables directly
	_ = godotenv.Load()

	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Tarim KDS...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize LLM client (multi-provider with rate limiting).
	// The service runs without one: the rule path and the fallback
	// still answer questions, only the generative path and the
	// analyze endpoint need a provider.
	var llmClient llm.Provider

	if len(cfg.Providers) > 0 {
		multiClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
			Providers:   cfg.Providers,
			MaxFailures: cfg.MaxFailuresBeforeSwitch,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize multi-provider client, falling back to single provider",
				zap.Error(err))
		} else {
			llmClient = multiClient
			defer multiClient.Close()
			logger.Info("Multi-provider client initialized",
				zap.Int("provider_count", len(cfg.Providers)))
		}
	}

	if llmClient == nil && cfg.Gemini.APIKey != "" && cfg.Gemini.APIKey != "YOUR_API_KEY_HERE" {
		geminiClient, err := gemini.NewClient(gemini.Config{
			APIKey:     cfg.Gemini.APIKey,
			ModelName:  cfg.Gemini.ModelName,
			MaxRetries: cfg.Gemini.MaxRetries,
			RetryDelay: 2 * time.Second,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, generative path disabled", zap.Error(err))
		} else {
			defer geminiClient.Close()
			llmClient = llm.NewRateLimitedProvider(geminiClient, 8, logger)
			logger.Info("Single provider client initialized with rate limiting")
		}
	}

	if llmClient == nil {
		logger.Warn("No LLM provider configured; running with rule path and fallback only")
	}

	// Initialize repository
	repo, err := repository.NewStatsRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open statistics database", zap.Error(err))
	}
	defer repo.Close()

	// Resolve schema and reference year up front so the first request
	// does not pay for it.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	schemas := schema.NewCache(repo, logger)
	sch := schemas.Resolve(startupCtx)

	refYear := cfg.Query.ReferenceYear
	if refYear == 0 {
		refYear, err = repo.MaxYear(startupCtx, sch)
		if err != nil {
			logger.Warn("Failed to derive reference year from data", zap.Error(err))
			refYear = 2024
		}
	}
	cancelStartup()
	logger.Info("Schema resolved",
		zap.String("table", sch.Table),
		zap.Int("reference_year", refYear))

	// Wire the resolution ladder
	extractor := extract.New(refYear)

	var gen resolver.Generator
	if llmClient != nil {
		gen = llmClient
	}
	res := resolver.New(schemas, extractor, gen, cfg.Query.GenerativeTimeout, logger)

	var svcLLM service.LLMClient
	if llmClient != nil {
		svcLLM = llmClient
	}
	answerer := service.NewAnswerer(repo, res, svcLLM, schemas, refYear, cfg.Analysis.CacheTTL, logger)

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(answerer, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMinute, time.Minute))

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Tarim KDS is running",
		zap.String("port", cfg.Server.Port),
		zap.Int("reference_year", refYear))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
