package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pdf-qa-backend/internal/vectorstore"
)

func TestBuildPromptLabelsAndSeparators(t *testing.T) {
	matches := []vectorstore.Match{
		{Metadata: vectorstore.Metadata{Text: "alpha text", Source: "report.pdf", Pages: []int{1, 2}}},
		{Metadata: vectorstore.Metadata{Text: "beta text", Source: "notes.pdf", Pages: []int{7}}},
	}

	system, user := BuildPrompt("what changed?", matches)

	assert.Contains(t, system, "based ONLY on the provided context")
	assert.Contains(t, system, "cite the source and page numbers")

	assert.Contains(t, user, "[Source: report.pdf, Pages: [1, 2]]\nalpha text")
	assert.Contains(t, user, "[Source: notes.pdf, Pages: [7]]\nbeta text")
	assert.Contains(t, user, "\n\n---\n\n")
	assert.Contains(t, user, "Question: what changed?")
	assert.True(t, strings.HasSuffix(user, "Answer based on the context above:"))

	// Blocks keep the retrieval order.
	assert.Less(t, strings.Index(user, "alpha text"), strings.Index(user, "beta text"))
}

func TestBuildPromptEmptyContext(t *testing.T) {
	_, user := BuildPrompt("anything?", nil)

	assert.Contains(t, user, "Context from the document:\n\n")
	assert.Contains(t, user, "Question: anything?")
}
