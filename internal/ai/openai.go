package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-qa-backend/internal/config"
)

// NewOpenAIEmbeddingClient returns an EmbeddingClient backed by the
// configured OpenAI embedding model.
func NewOpenAIEmbeddingClient(cfg *config.Config) (EmbeddingClient, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI embedding client: %w", err)
	}
	return llm, nil
}

// OpenAIGenerator implements Generator using the configured OpenAI chat
// model. Calls go through a circuit breaker so a failing upstream trips
// fast instead of queueing latency-sensitive requests.
type OpenAIGenerator struct {
	llm         *openai.LLM
	breaker     *gobreaker.CircuitBreaker
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewOpenAIGenerator constructs the generator once per process; it is safe
// for concurrent use and meant to be injected into the query orchestrator.
func NewOpenAIGenerator(cfg *config.Config) (*OpenAIGenerator, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(cfg.ChatModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI chat client: %w", err)
	}

	logger := slog.Default().With("component", "generator")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenAIChat",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &OpenAIGenerator{
		llm:         llm,
		breaker:     breaker,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		logger:      logger,
	}, nil
}

// GenerateAnswer invokes the chat model with a system instruction and the
// assembled user prompt. Low temperature favors grounded, deterministic
// answers over creative ones.
func (g *OpenAIGenerator) GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.llm.GenerateContent(ctx,
			[]llms.MessageContent{
				llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
				llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
			},
			llms.WithTemperature(g.temperature),
			llms.WithMaxTokens(g.maxTokens),
		)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no candidates in response")
		}
		return resp.Choices[0].Content, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("generation service unavailable: %w", err)
		}
		return "", err
	}

	return result.(string), nil
}
