package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdf-qa-backend/models"
)

// TextExtractor pulls per-page plain text out of a raw document.
type TextExtractor interface {
	Extract(data []byte, source string) ([]models.PageText, error)
}

// PDFExtractor implements TextExtractor for PDF documents. Pages that
// contain no extractable text (scanned images) are skipped; a document
// where every page is empty yields an empty slice, not an error.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract parses the PDF and returns the text of each non-empty page,
// tagged with its 1-based page number.
func (e *PDFExtractor) Extract(data []byte, source string) (pages []models.PageText, err error) {
	// The parser panics on some malformed files instead of returning
	// an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &ExtractionError{Source: source, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Source: source, Err: err}
	}

	numPages := reader.NumPage()
	pages = make([]models.PageText, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ExtractionError{Source: source, Err: fmt.Errorf("page %d: %w", i, err)}
		}

		text = cleanText(text)
		if text == "" {
			continue
		}

		pages = append(pages, models.PageText{Number: i, Text: text})
	}

	return pages, nil
}

// cleanText strips invalid UTF-8, NULs and leading/trailing whitespace
// so downstream JSON payloads stay well formed.
func cleanText(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
