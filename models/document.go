package models

import "time"

// PageText is one page of extracted document text, 1-based page numbers.
type PageText struct {
	Number int
	Text   string
}

// Chunk is a bounded slice of document text used as the retrieval unit.
// Pages lists every page the chunk's character window overlaps, in order.
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Pages  []int  `json:"pages"`
	Index  int    `json:"index"`
}

// ChunkingConfig defines how extracted text is split into chunks.
type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// Ingest status constants for the document lifecycle.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// IngestStatus is the operational record for one document's ingestion run.
type IngestStatus struct {
	Key        string    `json:"key"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count,omitempty"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UploadResponse is returned after a document upload is accepted.
type UploadResponse struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"`
	Message  string `json:"message"`
}
