package services

import (
	"fmt"
	"strings"

	"pdf-qa-backend/internal/vectorstore"
)

// systemInstruction pins the model to the retrieved context and asks it
// to cite sources. Kept as a constant so behavior is identical across
// requests.
const systemInstruction = `You are an expert AI assistant. Answer questions based ONLY on the provided context.
If the context doesn't contain enough information, say so clearly.
Always cite the source and page numbers when referencing information.
Be concise, accurate, and helpful.`

// BuildPrompt assembles the system instruction and the user prompt for a
// question. Each retrieved chunk becomes a labeled context block so the
// model can attribute its answer; blocks keep the retrieval order.
func BuildPrompt(question string, matches []vectorstore.Match) (systemPrompt, userPrompt string) {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("[Source: %s, Pages: %s]\n%s",
			m.Metadata.Source, formatPages(m.Metadata.Pages), m.Metadata.Text))
	}
	contextText := strings.Join(blocks, "\n\n---\n\n")

	userPrompt = fmt.Sprintf("Context from the document:\n%s\n\nQuestion: %s\n\nAnswer based on the context above:",
		contextText, question)

	return systemInstruction, userPrompt
}

func formatPages(pages []int) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, fmt.Sprintf("%d", p))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
