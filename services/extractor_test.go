package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRejectsCorruptInput(t *testing.T) {
	extractor := NewPDFExtractor()

	for name, data := range map[string][]byte{
		"empty":      {},
		"not a pdf":  []byte("just some plain text"),
		"fake magic": []byte("%PDF-1.7 but nothing else"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := extractor.Extract(data, "broken.pdf")
			require.Error(t, err)

			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, "broken.pdf", extractionErr.Source)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", cleanText("  hello world \n"))
	assert.Equal(t, "ab", cleanText("a\x00b"))
	assert.Equal(t, "", cleanText("   \t\n  "))
	assert.Equal(t, "ok", cleanText("ok\xff"))
}
