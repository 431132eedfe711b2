package services

import (
	"fmt"
	"iter"

	"pdf-qa-backend/models"
)

type pageSpan struct {
	number int
	start  int // rune offset, inclusive
	end    int // rune offset, exclusive
}

// Chunker splits extracted page text into fixed-size overlapping chunks
// while remembering which pages each chunk came from. Sizes are measured
// in runes so multi-byte text does not split mid-character.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker validates the window parameters. The overlap must leave a
// positive step, otherwise chunking would never advance.
func NewChunker(cfg models.ChunkingConfig) (*Chunker, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	return &Chunker{chunkSize: cfg.ChunkSize, chunkOverlap: cfg.ChunkOverlap}, nil
}

// Chunks yields overlapping chunks over the concatenated page text.
// Every rune of the input appears in at least one chunk, consecutive
// chunks share exactly the configured overlap, and each chunk lists the
// pages its window intersects in ascending order.
func (c *Chunker) Chunks(pages []models.PageText, source string) iter.Seq[models.Chunk] {
	return func(yield func(models.Chunk) bool) {
		text, spans := flattenPages(pages)
		if len(text) == 0 {
			return
		}

		step := c.chunkSize - c.chunkOverlap
		index := 0
		for start := 0; ; start += step {
			end := start + c.chunkSize
			if end > len(text) {
				end = len(text)
			}

			chunk := models.Chunk{
				Text:   string(text[start:end]),
				Source: source,
				Pages:  pagesInWindow(spans, start, end),
				Index:  index,
			}
			if !yield(chunk) {
				return
			}
			index++

			if end == len(text) {
				return
			}
		}
	}
}

// ChunkAll collects the chunk sequence into a slice.
func (c *Chunker) ChunkAll(pages []models.PageText, source string) []models.Chunk {
	chunks := []models.Chunk{}
	for chunk := range c.Chunks(pages, source) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// flattenPages concatenates page texts, recording the rune span each
// page occupies in the combined text. Pages are joined without a
// separator so chunk windows carry straight across page boundaries.
func flattenPages(pages []models.PageText) ([]rune, []pageSpan) {
	var text []rune
	spans := make([]pageSpan, 0, len(pages))

	for _, page := range pages {
		start := len(text)
		text = append(text, []rune(page.Text)...)
		spans = append(spans, pageSpan{number: page.Number, start: start, end: len(text)})
	}

	return text, spans
}

// pagesInWindow returns the page numbers whose spans intersect [start, end).
func pagesInWindow(spans []pageSpan, start, end int) []int {
	var pages []int
	for _, span := range spans {
		if span.start < end && span.end > start {
			pages = append(pages, span.number)
		}
	}
	return pages
}
