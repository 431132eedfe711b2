// Package vectorstore defines the narrow interface the pipelines use to
// talk to the external vector index, plus a Pinecone implementation.
// The index is pre-provisioned (fixed dimensionality, cosine metric);
// this package only reads and writes records.
package vectorstore

import "context"

// Metadata is the per-record payload stored alongside a vector.
type Metadata struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Pages  []int  `json:"pages"`
}

// Record is the persisted form of a chunk inside the vector index.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is one nearest-neighbor hit. Score is cosine similarity; the
// index returns matches in descending score order.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Store is the vector index surface consumed by the pipelines.
type Store interface {
	// Upsert inserts or overwrites records by id.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK nearest records by cosine similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
