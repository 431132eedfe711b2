package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// OpenAI models
	OpenAIAPIKey    string
	EmbeddingModel  string
	ChatModel       string
	Temperature     float64
	MaxOutputTokens int

	// Pinecone index (pre-provisioned, cosine metric)
	PineconeAPIKey    string
	PineconeIndexHost string
	VectorDimensions  int

	// Chunking and retrieval
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	EmbedBatchSize  int
	EmbedRPM        int
	UpsertBatchSize int

	// Object storage
	StorageBackend string // "fs" or "gcs"
	FileStorageDir string
	StorageBucket  string
	MaxFileSize    int64

	// Redis (asynq broker, ingest status, rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// The query path is latency-sensitive; ingestion gets a much longer
	// deadline since extraction plus embedding a large document is slow.
	QueryTimeout  time.Duration
	IngestTimeout time.Duration

	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		ChatModel:       getEnv("CHAT_MODEL", "gpt-4o-mini"),
		Temperature:     getEnvFloat64("CHAT_TEMPERATURE", 0.3),
		MaxOutputTokens: getEnvInt("CHAT_MAX_TOKENS", 800),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		VectorDimensions:  getEnvInt("VECTOR_DIM", 1536),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		TopK:            getEnvInt("TOP_K", 5),
		EmbedBatchSize:  getEnvInt("EMBED_BATCH_SIZE", 50),
		EmbedRPM:        getEnvInt("EMBED_RPM", 300),
		UpsertBatchSize: getEnvInt("UPSERT_BATCH_SIZE", 100),

		StorageBackend: getEnv("STORAGE_BACKEND", "fs"),
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),
		StorageBucket:  getEnv("STORAGE_BUCKET", "documents"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		QueryTimeout:  time.Duration(getEnvInt("QUERY_TIMEOUT_SECONDS", 30)) * time.Second,
		IngestTimeout: time.Duration(getEnvInt("INGEST_TIMEOUT_MINUTES", 10)) * time.Minute,

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required - set it in .env file")
	}

	if cfg.PineconeAPIKey == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is required - set it in .env file")
	}

	if cfg.PineconeIndexHost == "" {
		return nil, fmt.Errorf("PINECONE_INDEX_HOST is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	if cfg.StorageBackend != "fs" && cfg.StorageBackend != "gcs" {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND: %s", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
