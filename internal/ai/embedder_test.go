package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingClient struct {
	createFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return f.createFn(ctx, texts)
}

// echoClient returns one vector per text whose first component encodes
// the text, so order can be checked end to end.
func echoClient(batchSizes *[]int) *fakeEmbeddingClient {
	return &fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			*batchSizes = append(*batchSizes, len(texts))
			out := make([][]float32, len(texts))
			for i, text := range texts {
				var v float32
				fmt.Sscanf(text, "t%f", &v)
				out[i] = []float32{v}
			}
			return out, nil
		},
	}
}

func TestEmbedTextsPreservesOrderAcrossBatches(t *testing.T) {
	var batchSizes []int
	embedder := NewBatchingEmbedder(echoClient(&batchSizes), 3, WithRequestsPerMinute(60000))

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}

	vectors, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 8)

	for i, vector := range vectors {
		assert.Equal(t, float32(i), vector[0])
	}

	assert.Equal(t, []int{3, 3, 2}, batchSizes)
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	embedder := NewBatchingEmbedder(&fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}, 3)

	vectors, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedBatchRetriesTransientFailures(t *testing.T) {
	calls := 0
	client := &fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("temporary failure")
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1}
			}
			return out, nil
		},
	}

	embedder := NewBatchingEmbedder(client, 10, WithMaxRetries(2), WithRequestsPerMinute(60000))

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 2, calls)
}

func TestEmbedBatchGivesUpAfterRetryBudget(t *testing.T) {
	calls := 0
	client := &fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			return nil, errors.New("still failing")
		},
	}

	embedder := NewBatchingEmbedder(client, 10, WithMaxRetries(1), WithRequestsPerMinute(60000))

	_, err := embedder.EmbedTexts(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestEmbedTextsRejectsVectorCountMismatch(t *testing.T) {
	client := &fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		},
	}

	embedder := NewBatchingEmbedder(client, 10, WithRequestsPerMinute(60000))

	_, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 vectors for 2 texts")
}

func TestEmbedTextSingle(t *testing.T) {
	client := &fakeEmbeddingClient{
		createFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			require.Equal(t, []string{"hello"}, texts)
			return [][]float32{{0.5, 0.5}}, nil
		},
	}

	embedder := NewBatchingEmbedder(client, 10, WithRequestsPerMinute(60000))

	vector, err := embedder.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)
}
