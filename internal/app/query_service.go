package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"newsrag/internal/ai"
	"newsrag/internal/embedding"
	"newsrag/internal/model"
	"newsrag/internal/vectorstore"
)

const (
	defaultTopK          = 5
	defaultMinSimilarity = 0.2

	greetingAnswer = "Hello! I'm a news chatbot. Please ask me about current events, news topics, " +
		"or anything you'd like to know about recent news articles. For example, you could ask about " +
		"politics, technology, world events, or any specific news story."

	noContextAnswer = "I couldn't find any relevant information in the news articles to answer your " +
		"question. Please try asking about current events, politics, world news, or other topics that " +
		"might be covered in recent news articles."

	apologyAnswer = "I apologize, but something went wrong while processing your question. Please try again."
)

var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
}

// QueryService answers a question from the indexed corpus: embed, search,
// threshold, prompt, generate. It never surfaces a dependency error to the
// caller; failures become a polite fixed answer with zero confidence.
type QueryService struct {
	embedder      embedding.Embedder
	store         vectorstore.Store
	generator     ai.Generator
	topK          int
	minSimilarity float32
	logger        *zap.Logger
}

func NewQueryService(
	embedder embedding.Embedder,
	store vectorstore.Store,
	generator ai.Generator,
	topK int,
	minSimilarity float32,
	logger *zap.Logger,
) *QueryService {
	if topK <= 0 {
		topK = defaultTopK
	}
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	return &QueryService{
		embedder:      embedder,
		store:         store,
		generator:     generator,
		topK:          topK,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Answer runs one query through the retrieval pipeline.
func (s *QueryService) Answer(ctx context.Context, question string) *model.QueryResult {
	question = strings.TrimSpace(question)

	if isTrivial(question) {
		return &model.QueryResult{
			Answer:     greetingAnswer,
			Sources:    []model.Source{},
			Confidence: 1.0,
		}
	}

	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return &model.QueryResult{Answer: apologyAnswer, Sources: []model.Source{}, Confidence: 0.0}
	}
	if len(chunks) == 0 {
		return &model.QueryResult{Answer: noContextAnswer, Sources: []model.Source{}, Confidence: 0.0}
	}

	answer, err := s.generator.Generate(ctx, buildPrompt(question, chunks))
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err))
		return &model.QueryResult{Answer: apologyAnswer, Sources: []model.Source{}, Confidence: 0.0}
	}

	return &model.QueryResult{
		Answer:          answer,
		Sources:         dedupSources(chunks),
		Confidence:      meanScore(chunks),
		RetrievedChunks: len(chunks),
	}
}

func (s *QueryService) retrieve(ctx context.Context, question string) ([]model.SearchResult, error) {
	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}

	results, err := s.store.Search(ctx, vectors[0], s.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	kept := results[:0]
	for _, r := range results {
		if r.Score >= s.minSimilarity {
			kept = append(kept, r)
		}
	}
	s.logger.Debug("retrieved chunks",
		zap.Int("total", len(results)),
		zap.Int("above_threshold", len(kept)),
	)
	return kept, nil
}

// isTrivial catches greetings and inputs too short to retrieve on.
func isTrivial(question string) bool {
	if len(question) < 3 {
		return true
	}
	_, ok := greetings[strings.ToLower(question)]
	return ok
}

func buildPrompt(question string, chunks []model.SearchResult) string {
	var sections strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&sections, "\nArticle %d:\nTitle: %s\nSource: %s\nPublished: %s\nRelevance Score: %.3f\nContent: %s\n---",
			i+1, chunk.Title, chunk.Source, chunk.PublishedDate, chunk.Score, chunk.Content)
	}

	return fmt.Sprintf(`You are a news analysis assistant. Based on the following retrieved news articles, provide a comprehensive and well-structured answer to the user's question.

USER QUESTION: %s

RETRIEVED NEWS ARTICLES:
%s

INSTRUCTIONS:
1. Analyze the retrieved articles to find information relevant to the user's question
2. Synthesize information from multiple sources when available
3. Provide specific details, facts, and context from the articles
4. Structure your response clearly with key points
5. If information is limited, explain what is available and what is missing
6. Be factual and objective, citing information from the articles
7. If the articles don't contain relevant information, clearly state this

RESPONSE:`, question, sections.String())
}

// dedupSources keeps the first occurrence of each (title, url) pair, in
// retrieval order.
func dedupSources(chunks []model.SearchResult) []model.Source {
	type key struct{ title, url string }
	seen := make(map[key]struct{}, len(chunks))
	sources := make([]model.Source, 0, len(chunks))
	for _, chunk := range chunks {
		k := key{chunk.Title, chunk.URL}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sources = append(sources, model.Source{
			Title:         chunk.Title,
			URL:           chunk.URL,
			Source:        chunk.Source,
			PublishedDate: chunk.PublishedDate,
		})
	}
	return sources
}

func meanScore(chunks []model.SearchResult) float32 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float32
	for _, c := range chunks {
		sum += c.Score
	}
	return sum / float32(len(chunks))
}
