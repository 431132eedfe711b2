package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PineconeClient talks to a single Pinecone serverless index over its
// data-plane REST API. The host is the index endpoint from the Pinecone
// console, e.g. https://my-index-abc123.svc.us-east-1-aws.pinecone.io.
type PineconeClient struct {
	host       string
	apiKey     string
	batchSize  int
	httpClient *http.Client
}

// PineconeOption configures a PineconeClient.
type PineconeOption func(*PineconeClient)

// WithUpsertBatchSize bounds how many records go into one upsert request.
func WithUpsertBatchSize(n int) PineconeOption {
	return func(c *PineconeClient) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) PineconeOption {
	return func(c *PineconeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewPineconeClient creates a client for a pre-provisioned index.
func NewPineconeClient(host, apiKey string, opts ...PineconeOption) *PineconeClient {
	c := &PineconeClient{
		host:      host,
		apiKey:    apiKey,
		batchSize: 100,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type upsertRequest struct {
	Vectors []Record `json:"vectors"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// Upsert writes records in batches bounded by the index request limit.
// Records are keyed by id, so re-upserting overwrites rather than
// duplicating.
func (c *PineconeClient) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}

		var resp upsertResponse
		req := upsertRequest{Vectors: records[start:end]}
		if err := c.post(ctx, "/vectors/upsert", req, &resp); err != nil {
			return fmt.Errorf("pinecone upsert failed: %w", err)
		}
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Query returns the topK nearest records with their metadata.
func (c *PineconeClient) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := c.post(ctx, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	if resp.Matches == nil {
		return []Match{}, nil
	}
	return resp.Matches, nil
}

func (c *PineconeClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
