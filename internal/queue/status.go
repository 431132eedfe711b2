package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pdf-qa-backend/models"
)

const statusKeyPrefix = "ingest:status:"

// statusTTL keeps finished entries around long enough for clients to
// poll, without growing Redis forever.
const statusTTL = 7 * 24 * time.Hour

// StatusStore tracks per-document ingestion state in Redis so the API
// can report progress while the worker runs.
type StatusStore struct {
	client *redis.Client
}

func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

func (s *StatusStore) set(ctx context.Context, status models.IngestStatus) error {
	status.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := s.client.Set(ctx, statusKeyPrefix+status.Key, data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to store status for %s: %w", status.Key, err)
	}
	return nil
}

// MarkPending records that a document was accepted and queued.
func (s *StatusStore) MarkPending(ctx context.Context, key string) error {
	return s.set(ctx, models.IngestStatus{Key: key, Status: models.StatusPending})
}

// MarkProcessing records that the worker picked the document up.
func (s *StatusStore) MarkProcessing(ctx context.Context, key string) error {
	return s.set(ctx, models.IngestStatus{Key: key, Status: models.StatusProcessing})
}

// MarkCompleted records a successful ingestion and its chunk count.
func (s *StatusStore) MarkCompleted(ctx context.Context, key string, chunkCount int) error {
	return s.set(ctx, models.IngestStatus{Key: key, Status: models.StatusCompleted, ChunkCount: chunkCount})
}

// MarkFailed records a terminal failure with its reason.
func (s *StatusStore) MarkFailed(ctx context.Context, key string, reason string) error {
	return s.set(ctx, models.IngestStatus{Key: key, Status: models.StatusFailed, Error: reason})
}

// Get returns the current status for a document key. The second return
// value is false when the key was never ingested or the entry expired.
func (s *StatusStore) Get(ctx context.Context, key string) (models.IngestStatus, bool, error) {
	data, err := s.client.Get(ctx, statusKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return models.IngestStatus{}, false, nil
	}
	if err != nil {
		return models.IngestStatus{}, false, fmt.Errorf("failed to read status for %s: %w", key, err)
	}

	var status models.IngestStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return models.IngestStatus{}, false, fmt.Errorf("failed to unmarshal status for %s: %w", key, err)
	}
	return status, true, nil
}
