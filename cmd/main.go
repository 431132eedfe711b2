package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pdf-qa-backend/internal/ai"
	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/internal/queue"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/internal/vectorstore"
	"pdf-qa-backend/middleware"
	"pdf-qa-backend/routes"
	"pdf-qa-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing is optional; without a collector the app runs untraced
	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("pdf-qa-api", cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracing", "err", err)
		} else {
			defer shutdown()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// Connect to Redis (rate limiting, ingest status, task broker)
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	redisOpt, err := config.AsynqRedisOpt(cfg)
	if err != nil {
		log.Fatal("Failed to configure task broker:", err)
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	store, err := buildObjectStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}

	// Query pipeline dependencies
	embeddingClient, err := ai.NewOpenAIEmbeddingClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedding client:", err)
	}
	embedder := ai.NewBatchingEmbedder(embeddingClient, cfg.EmbedBatchSize,
		ai.WithRequestsPerMinute(cfg.EmbedRPM))

	generator, err := ai.NewOpenAIGenerator(cfg)
	if err != nil {
		log.Fatal("Failed to initialize generator:", err)
	}

	index := vectorstore.NewPineconeClient(cfg.PineconeIndexHost, cfg.PineconeAPIKey,
		vectorstore.WithUpsertBatchSize(cfg.UpsertBatchSize))

	queryService := services.NewQueryService(embedder, index, generator, cfg.TopK, cfg.ChatModel)
	statusStore := queue.NewStatusStore(rdb)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("pdf-qa-api"))
	}
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupQueryRoutes(router, queryService, cfg, metrics)
	routes.SetupDocumentRoutes(router, store, statusStore, asynqClient, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func buildObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "gcs" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewGCSStore(ctx)
	}
	return storage.NewFilesystemStore(cfg.FileStorageDir)
}
