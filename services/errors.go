package services

import "fmt"

// ValidationError marks input the caller can fix, such as an empty
// question or a non-PDF upload. Handlers map it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExtractionError means the stored document could not be parsed as a
// PDF. Retrying will not help, so the worker drops the task instead of
// redelivering it.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingServiceError wraps failures from the embedding API.
type EmbeddingServiceError struct {
	Err error
}

func (e *EmbeddingServiceError) Error() string {
	return fmt.Sprintf("embedding service error: %v", e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error {
	return e.Err
}

// VectorIndexError wraps failures from the vector index.
type VectorIndexError struct {
	Op  string
	Err error
}

func (e *VectorIndexError) Error() string {
	return fmt.Sprintf("vector index %s error: %v", e.Op, e.Err)
}

func (e *VectorIndexError) Unwrap() error {
	return e.Err
}

// GenerationServiceError wraps failures from the chat model.
type GenerationServiceError struct {
	Err error
}

func (e *GenerationServiceError) Error() string {
	return fmt.Sprintf("generation service error: %v", e.Err)
}

func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}
