// Package queue defines the background ingestion task and its processor,
// plus the Redis-backed status tracking exposed by the API.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/services"
)

const (
	// TaskDocumentIngest processes one uploaded document into the
	// vector index.
	TaskDocumentIngest = "document:ingest"

	// QueueCritical is where ingestion tasks run; the worker weights
	// it above default traffic.
	QueueCritical = "critical"
)

// DocumentIngestPayload identifies the stored object to ingest.
type DocumentIngestPayload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NewDocumentIngestTask builds the task with its retry and timeout
// policy. Delivery is at least once; the pipeline is idempotent per key,
// so redelivery re-upserts the same records.
func NewDocumentIngestTask(bucket, key string, timeout time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentIngestPayload{Bucket: bucket, Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return asynq.NewTask(TaskDocumentIngest, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(timeout),
		asynq.Queue(QueueCritical),
	), nil
}

// TaskProcessor handles queued ingestion tasks.
type TaskProcessor struct {
	ingestion *services.IngestionService
	status    *StatusStore
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

func NewTaskProcessor(ingestion *services.IngestionService, status *StatusStore, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{
		ingestion: ingestion,
		status:    status,
		metrics:   metrics,
		logger:    slog.Default().With("component", "worker"),
	}
}

// HandleDocumentIngest runs the ingestion pipeline for one task.
// Unparseable payloads and malformed documents are dropped rather than
// retried; transient upstream failures go back to the queue until the
// retry budget runs out.
func (p *TaskProcessor) HandleDocumentIngest(ctx context.Context, t *asynq.Task) error {
	var payload DocumentIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.logger.Error("invalid task payload", "err", err)
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.Info("ingesting document", "bucket", payload.Bucket, "key", payload.Key)

	if err := p.status.MarkProcessing(ctx, payload.Key); err != nil {
		p.logger.Warn("failed to update status", "key", payload.Key, "err", err)
	}

	start := time.Now()
	chunkCount, err := p.ingestion.IngestDocument(ctx, payload.Bucket, payload.Key)
	if err != nil {
		var extractionErr *services.ExtractionError
		if errors.As(err, &extractionErr) {
			p.markFailed(ctx, payload.Key, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if lastAttempt(ctx) {
			p.markFailed(ctx, payload.Key, err)
		}
		p.logger.Error("ingestion failed", "key", payload.Key, "err", err)
		return err
	}

	if p.metrics != nil {
		p.metrics.IngestDuration.Record(ctx, time.Since(start).Seconds())
		p.metrics.ChunksUpserted.Add(ctx, int64(chunkCount))
	}

	if err := p.status.MarkCompleted(ctx, payload.Key, chunkCount); err != nil {
		p.logger.Warn("failed to update status", "key", payload.Key, "err", err)
	}

	p.logger.Info("document ingested", "key", payload.Key, "chunks", chunkCount, "duration", time.Since(start))
	return nil
}

func (p *TaskProcessor) markFailed(ctx context.Context, key string, cause error) {
	if err := p.status.MarkFailed(ctx, key, cause.Error()); err != nil {
		p.logger.Warn("failed to update status", "key", key, "err", err)
	}
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}
	return retried >= maxRetry
}
