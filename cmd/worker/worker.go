package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pdf-qa-backend/internal/ai"
	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/internal/queue"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/internal/vectorstore"
	"pdf-qa-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("pdf-qa-worker", cfg.OTLPEndpoint)
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

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	store, err := buildObjectStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}

	chunker, err := services.NewChunkerFromSizes(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking configuration:", err)
	}

	embeddingClient, err := ai.NewOpenAIEmbeddingClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedding client:", err)
	}
	embedder := ai.NewBatchingEmbedder(embeddingClient, cfg.EmbedBatchSize,
		ai.WithRequestsPerMinute(cfg.EmbedRPM))

	index := vectorstore.NewPineconeClient(cfg.PineconeIndexHost, cfg.PineconeAPIKey,
		vectorstore.WithUpsertBatchSize(cfg.UpsertBatchSize))

	ingestion := services.NewIngestionService(store, services.NewPDFExtractor(), chunker, embedder, index)
	statusStore := queue.NewStatusStore(rdb)
	processor := queue.NewTaskProcessor(ingestion, statusStore, metrics)

	redisOpt, err := config.AsynqRedisOpt(cfg)
	if err != nil {
		log.Fatal("Failed to configure task broker:", err)
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "err", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskDocumentIngest, processor.HandleDocumentIngest)

	logger.Info("Starting ingestion worker", "concurrency", 10, "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}

func buildObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "gcs" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewGCSStore(ctx)
	}
	return storage.NewFilesystemStore(cfg.FileStorageDir)
}
