package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsrag/internal/model"
	"newsrag/internal/vectorstore"
)

type mockEmbedder struct {
	dim   int
	calls int
	err   error
}

func (m *mockEmbedder) Dimension() int { return m.dim }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, m.dim)
		vectors[i][0] = 1
	}
	return vectors, nil
}

type mockStore struct {
	results     []model.SearchResult
	searchCalls int
	err         error
}

func (m *mockStore) EnsureCollection(context.Context) error { return nil }

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) Upsert(context.Context, []vectorstore.Point) error { return nil }

func (m *mockStore) Search(_ context.Context, _ []float32, limit int) ([]model.SearchResult, error) {
	m.searchCalls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) > limit {
		return m.results[:limit], nil
	}
	return m.results, nil
}

type mockGenerator struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockGenerator) Available() bool { return true }

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func newService(e *mockEmbedder, st *mockStore, g *mockGenerator) *QueryService {
	return NewQueryService(e, st, g, 5, 0.2, zap.NewNop())
}

func TestTrivialInputShortCircuits(t *testing.T) {
	for _, input := range []string{"hello", "Hi", "hey", "GOOD MORNING", "a", ""} {
		e := &mockEmbedder{dim: 4}
		st := &mockStore{}
		g := &mockGenerator{answer: "unused"}

		result := newService(e, st, g).Answer(context.Background(), input)
		require.Equal(t, greetingAnswer, result.Answer, "input %q", input)
		require.Empty(t, result.Sources)
		require.Equal(t, float32(1.0), result.Confidence)
		require.Zero(t, e.calls, "input %q touched the embedder", input)
		require.Zero(t, st.searchCalls, "input %q touched the vector store", input)
		require.Zero(t, g.calls, "input %q touched the generator", input)
	}
}

func TestNoResultsAboveThreshold(t *testing.T) {
	e := &mockEmbedder{dim: 4}
	st := &mockStore{results: []model.SearchResult{
		{Score: 0.15, Title: "weak match"},
		{Score: 0.05, Title: "weaker match"},
	}}
	g := &mockGenerator{answer: "unused"}

	result := newService(e, st, g).Answer(context.Background(), "what happened in the election")
	require.Equal(t, noContextAnswer, result.Answer)
	require.Empty(t, result.Sources)
	require.Equal(t, float32(0.0), result.Confidence)
	require.Zero(t, g.calls)
}

func TestAnswerConfidenceAndSources(t *testing.T) {
	e := &mockEmbedder{dim: 4}
	st := &mockStore{results: []model.SearchResult{
		{Score: 0.9, Title: "Rate cut announced", URL: "https://news.example.com/a", Source: "bbc.co.uk"},
		{Score: 0.5, Title: "Rate cut announced", URL: "https://news.example.com/a", Source: "bbc.co.uk"},
		{Score: 0.4, Title: "Markets react", URL: "https://news.example.com/b", Source: "reuters.com"},
		{Score: 0.1, Title: "dropped", URL: "https://news.example.com/c"},
	}}
	g := &mockGenerator{answer: "The central bank cut rates."}

	result := newService(e, st, g).Answer(context.Background(), "what did the central bank do")
	require.Equal(t, "The central bank cut rates.", result.Answer)
	require.Equal(t, 3, result.RetrievedChunks)
	require.InDelta(t, (0.9+0.5+0.4)/3, float64(result.Confidence), 1e-6)
	require.GreaterOrEqual(t, float64(result.Confidence), 0.0)
	require.LessOrEqual(t, float64(result.Confidence), 1.0)

	// Duplicate (title, url) collapses to first-seen; order preserved.
	require.Len(t, result.Sources, 2)
	require.Equal(t, "Rate cut announced", result.Sources[0].Title)
	require.Equal(t, "Markets react", result.Sources[1].Title)
}

func TestPromptCarriesRetrievedContext(t *testing.T) {
	e := &mockEmbedder{dim: 4}
	st := &mockStore{results: []model.SearchResult{
		{Score: 0.8, Title: "Storm warning", Source: "npr.org", Content: "A storm is coming."},
	}}
	g := &mockGenerator{answer: "ok"}

	newService(e, st, g).Answer(context.Background(), "weather news")
	require.Contains(t, g.lastPrompt, "USER QUESTION: weather news")
	require.Contains(t, g.lastPrompt, "Title: Storm warning")
	require.Contains(t, g.lastPrompt, "A storm is coming.")
}

func TestGenerationFailureReturnsApology(t *testing.T) {
	e := &mockEmbedder{dim: 4}
	st := &mockStore{results: []model.SearchResult{{Score: 0.8, Title: "x"}}}
	g := &mockGenerator{err: errors.New("rate limited")}

	result := newService(e, st, g).Answer(context.Background(), "some real question")
	require.Equal(t, apologyAnswer, result.Answer)
	require.Equal(t, float32(0.0), result.Confidence)
	require.Empty(t, result.Sources)
	require.False(t, strings.Contains(result.Answer, "rate limited"))
}

func TestSearchFailureReturnsApology(t *testing.T) {
	e := &mockEmbedder{dim: 4}
	st := &mockStore{err: errors.New("connection refused")}
	g := &mockGenerator{answer: "unused"}

	result := newService(e, st, g).Answer(context.Background(), "some real question")
	require.Equal(t, apologyAnswer, result.Answer)
	require.Zero(t, g.calls)
	require.False(t, strings.Contains(result.Answer, "connection refused"))
}
