package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pdf-qa-backend/internal/ai"
	"pdf-qa-backend/internal/vectorstore"
	"pdf-qa-backend/models"
)

// QueryService answers questions grounded in the indexed documents:
// embed the question, retrieve the nearest chunks, build a context
// prompt and generate the answer. When retrieval comes back empty the
// generator still runs with an empty context block; the system
// instruction makes it state that the information is missing.
type QueryService struct {
	embedder  ai.Embedder
	index     vectorstore.Store
	generator ai.Generator
	topK      int
	chatModel string
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewQueryService(embedder ai.Embedder, index vectorstore.Store, generator ai.Generator, topK int, chatModel string) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	return &QueryService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		topK:      topK,
		chatModel: chatModel,
		tracer:    otel.Tracer("pdf-qa-backend/query"),
		logger:    slog.Default().With("component", "query"),
	}
}

// Answer runs the retrieval pipeline for one question.
func (s *QueryService) Answer(ctx context.Context, question string) (*models.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Message: "Question is required"}
	}

	ctx, span := s.tracer.Start(ctx, "query.Answer")
	defer span.End()
	span.SetAttributes(attribute.Int("query.top_k", s.topK))

	vector, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, &EmbeddingServiceError{Err: err}
	}

	matches, err := s.index.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, &VectorIndexError{Op: "query", Err: err}
	}
	matches = usableMatches(matches)
	span.SetAttributes(attribute.Int("query.matches", len(matches)))
	s.logger.Info("context retrieved", "matches", len(matches))

	systemPrompt, userPrompt := BuildPrompt(question, matches)

	answer, err := s.generator.GenerateAnswer(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, &GenerationServiceError{Err: err}
	}

	sources := make([]models.Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, models.Source{
			Source: m.Metadata.Source,
			Pages:  m.Metadata.Pages,
			Score:  m.Score,
		})
	}

	return &models.QueryResponse{
		Answer:   answer,
		Question: question,
		Model:    s.chatModel,
		Sources:  sources,
	}, nil
}

// usableMatches drops hits with no stored text and enforces descending
// score order. The index already sorts, but the contract here should not
// depend on that.
func usableMatches(matches []vectorstore.Match) []vectorstore.Match {
	usable := make([]vectorstore.Match, 0, len(matches))
	for _, m := range matches {
		if m.Metadata.Text != "" {
			usable = append(usable, m)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Score > usable[j].Score
	})
	return usable
}
