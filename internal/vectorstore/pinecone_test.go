package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSendsBatchedRequests(t *testing.T) {
	var paths []string
	var batchSizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		paths = append(paths, r.URL.Path)

		var req upsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batchSizes = append(batchSizes, len(req.Vectors))

		json.NewEncoder(w).Encode(upsertResponse{UpsertedCount: len(req.Vectors)})
	}))
	defer server.Close()

	client := NewPineconeClient(server.URL, "secret", WithUpsertBatchSize(2))

	records := []Record{
		{ID: "doc.pdf-0", Values: []float32{0.1}},
		{ID: "doc.pdf-1", Values: []float32{0.2}},
		{ID: "doc.pdf-2", Values: []float32{0.3}},
		{ID: "doc.pdf-3", Values: []float32{0.4}},
		{ID: "doc.pdf-4", Values: []float32{0.5}},
	}

	require.NoError(t, client.Upsert(context.Background(), records))

	assert.Equal(t, []string{"/vectors/upsert", "/vectors/upsert", "/vectors/upsert"}, paths)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestQueryDecodesMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.TopK)
		assert.True(t, req.IncludeMetadata)
		assert.Equal(t, []float32{0.1, 0.2}, req.Vector)

		json.NewEncoder(w).Encode(queryResponse{Matches: []Match{
			{ID: "a.pdf-0", Score: 0.91, Metadata: Metadata{Text: "body", Source: "a.pdf", Pages: []int{1, 2}}},
			{ID: "a.pdf-4", Score: 0.77, Metadata: Metadata{Text: "more", Source: "a.pdf", Pages: []int{9}}},
		}})
	}))
	defer server.Close()

	client := NewPineconeClient(server.URL, "secret")

	matches, err := client.Query(context.Background(), []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a.pdf-0", matches[0].ID)
	assert.Equal(t, 0.91, matches[0].Score)
	assert.Equal(t, []int{1, 2}, matches[0].Metadata.Pages)
}

func TestQueryEmptyMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewPineconeClient(server.URL, "secret")

	matches, err := client.Query(context.Background(), []float32{0.1}, 5)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewPineconeClient(server.URL, "wrong")

	_, err := client.Query(context.Background(), []float32{0.1}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")

	err = client.Upsert(context.Background(), []Record{{ID: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
