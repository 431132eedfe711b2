package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// BatchingEmbedder implements Embedder on top of an EmbeddingClient,
// adding request batching, rate limiting and bounded retry. Output order
// always matches input order, regardless of how the batches are split.
type BatchingEmbedder struct {
	client      EmbeddingClient
	batchSize   int
	maxRetries  int
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// EmbedderOption configures a BatchingEmbedder.
type EmbedderOption func(*BatchingEmbedder)

// WithMaxRetries sets how many times a failed batch is retried.
func WithMaxRetries(n int) EmbedderOption {
	return func(e *BatchingEmbedder) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithRequestsPerMinute bounds the request rate against the embedding API.
func WithRequestsPerMinute(rpm int) EmbedderOption {
	return func(e *BatchingEmbedder) {
		if rpm > 0 {
			burst := rpm / 10
			if burst < 1 {
				burst = 1
			}
			e.rateLimiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
		}
	}
}

// WithEmbedderLogger sets a custom logger.
func WithEmbedderLogger(logger *slog.Logger) EmbedderOption {
	return func(e *BatchingEmbedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewBatchingEmbedder wraps client with batching of at most batchSize texts
// per request. batchSize <= 0 falls back to 50, the upstream-friendly default.
func NewBatchingEmbedder(client EmbeddingClient, batchSize int, opts ...EmbedderOption) *BatchingEmbedder {
	if batchSize <= 0 {
		batchSize = 50
	}

	e := &BatchingEmbedder{
		client:      client,
		batchSize:   batchSize,
		maxRetries:  2,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:      slog.Default().With("component", "embedder"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EmbedText embeds a single string.
func (e *BatchingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts in batches, preserving input order.
func (e *BatchingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		batchVectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(batchVectors), len(batch))
		}

		vectors = append(vectors, batchVectors...)
		e.logger.Debug("embedded batch", "from", start, "to", end, "total", len(texts))
	}

	return vectors, nil
}

// embedBatch retries transient failures with exponential backoff.
func (e *BatchingEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			e.logger.Warn("retrying embedding batch", "attempt", attempt, "backoff", backoff, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		vectors, err := e.client.CreateEmbedding(ctx, batch)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.maxRetries+1, lastErr)
}
