package ai

import "context"

// Embedder turns text into fixed-length vectors for similarity search.
// Implementations must be safe for concurrent use and must return vectors
// in the same order as the input texts.
type Embedder interface {
	// EmbedText embeds a single string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of strings, one vector per input,
	// order preserved.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from a system instruction and a user prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// EmbeddingClient is the narrow surface of the upstream embedding API.
// *openai.LLM from langchaingo satisfies it directly.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
