package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"pdf-qa-backend/internal/ai"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/internal/vectorstore"
	"pdf-qa-backend/models"
)

// IngestionService runs the document pipeline: fetch the stored object,
// extract per-page text, chunk it, embed the chunks and upsert them into
// the vector index. Record ids are derived from the object key and the
// chunk index, so re-ingesting the same key overwrites in place instead
// of duplicating.
type IngestionService struct {
	store     storage.ObjectStore
	extractor TextExtractor
	chunker   *Chunker
	embedder  ai.Embedder
	index     vectorstore.Store
	logger    *slog.Logger
}

func NewIngestionService(
	store storage.ObjectStore,
	extractor TextExtractor,
	chunker *Chunker,
	embedder ai.Embedder,
	index vectorstore.Store,
) *IngestionService {
	return &IngestionService{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		logger:    slog.Default().With("component", "ingestion"),
	}
}

// IsDocumentKey reports whether an object key names a document this
// pipeline handles. Non-PDF objects in the bucket are ignored.
func IsDocumentKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".pdf")
}

// IngestDocument processes one stored document end to end and returns
// the number of chunks indexed. A document with no extractable text
// indexes zero chunks and is not an error.
func (s *IngestionService) IngestDocument(ctx context.Context, bucket, key string) (int, error) {
	if !IsDocumentKey(key) {
		s.logger.Info("skipping non-document object", "bucket", bucket, "key", key)
		return 0, nil
	}

	data, err := s.store.Get(ctx, bucket, key)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch document %s/%s: %w", bucket, key, err)
	}

	displayName := path.Base(key)

	pages, err := s.extractor.Extract(data, displayName)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		s.logger.Warn("document has no extractable text", "key", key)
		return 0, nil
	}

	chunks := s.chunker.ChunkAll(pages, displayName)
	s.logger.Info("document chunked", "key", key, "pages", len(pages), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, &EmbeddingServiceError{Err: err}
	}
	if len(vectors) != len(chunks) {
		return 0, &EmbeddingServiceError{Err: fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))}
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectorstore.Record{
			ID:     fmt.Sprintf("%s-%d", key, chunk.Index),
			Values: vectors[i],
			Metadata: vectorstore.Metadata{
				Text:   chunk.Text,
				Source: chunk.Source,
				Pages:  chunk.Pages,
			},
		}
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		return 0, &VectorIndexError{Op: "upsert", Err: err}
	}

	s.logger.Info("document indexed", "key", key, "chunks", len(records))
	return len(records), nil
}

// NewChunkerFromSizes builds a chunker from raw window sizes.
func NewChunkerFromSizes(chunkSize, chunkOverlap int) (*Chunker, error) {
	return NewChunker(models.ChunkingConfig{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap})
}
