package services

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-qa-backend/internal/vectorstore"
	"pdf-qa-backend/models"
)

// memoryIndex is an in-memory Store with dot-product scoring, enough to
// run both pipelines end to end against each other.
type memoryIndex struct {
	records map[string]vectorstore.Record
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{records: map[string]vectorstore.Record{}}
}

func (m *memoryIndex) Upsert(ctx context.Context, records []vectorstore.Record) error {
	for _, record := range records {
		m.records[record.ID] = record
	}
	return nil
}

func (m *memoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	matches := make([]vectorstore.Match, 0, len(m.records))
	for _, record := range m.records {
		var score float64
		for i := range vector {
			score += float64(vector[i]) * float64(record.Values[i])
		}
		matches = append(matches, vectorstore.Match{ID: record.ID, Score: score, Metadata: record.Metadata})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// topicEmbedder embeds any text mentioning France close to questions
// about France and everything else orthogonal to them.
func topicEmbedder() *fakeEmbedder {
	embed := func(text string) []float32 {
		if strings.Contains(text, "France") {
			return []float32{1, 0}
		}
		return []float32{0, 1}
	}
	return &fakeEmbedder{
		embedTextFn: func(ctx context.Context, text string) ([]float32, error) {
			return embed(text), nil
		},
		embedTextsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = embed(text)
			}
			return out, nil
		},
	}
}

func TestIngestThenQueryEndToEnd(t *testing.T) {
	pad := func(s string) string {
		return s + strings.Repeat(".", 1000-len(s))
	}
	store := &fakeObjectStore{objects: map[string][]byte{
		"documents/geo.pdf": []byte("raw pdf bytes"),
	}}
	extractor := &fakeExtractor{
		extractFn: func(data []byte, source string) ([]models.PageText, error) {
			return []models.PageText{
				{Number: 1, Text: pad("The capital of France is Paris.")},
				{Number: 2, Text: pad("Volcanoes erupt molten rock from deep underground.")},
			}, nil
		},
	}

	index := newMemoryIndex()
	chunker, err := NewChunkerFromSizes(1000, 0)
	require.NoError(t, err)

	ingestion := NewIngestionService(store, extractor, chunker, topicEmbedder(), index)

	count, err := ingestion.IngestDocument(context.Background(), "documents", "geo.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	generator := &fakeGenerator{
		generateFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			if strings.Contains(userPrompt, "Paris") {
				return "The capital of France is Paris.", nil
			}
			return "The context does not contain that information.", nil
		},
	}

	query := NewQueryService(topicEmbedder(), index, generator, 5, "gpt-4o-mini")

	resp, err := query.Answer(context.Background(), "What is the capital of France?")
	require.NoError(t, err)

	assert.Contains(t, resp.Answer, "Paris")
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, []int{1}, resp.Sources[0].Pages)
	assert.Greater(t, resp.Sources[0].Score, resp.Sources[1].Score)
	assert.Equal(t, "geo.pdf", resp.Sources[0].Source)
}
