package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func embeddingsBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedderFallsBackOnBackendFailure(t *testing.T) {
	srv := embeddingsBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	core, logs := observer.New(zap.WarnLevel)
	e := NewOpenAIEmbedder("test-key", srv.URL, "text-embedding-3-small", 16, zap.New(core))

	vectors, err := e.Embed(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, vec := range vectors {
		require.Len(t, vec, e.Dimension())
	}

	// The degraded path must be observable, not silent.
	require.Equal(t, 1, logs.FilterMessage("embedding backend failed, using random fallback").Len())
}

func TestOpenAIEmbedderPassesVectorsThrough(t *testing.T) {
	srv := embeddingsBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0, 0, 0}},
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1, 0, 0}},
			},
		})
	})

	e := NewOpenAIEmbedder("test-key", srv.URL, "text-embedding-3-small", 4, zap.NewNop())

	vectors, err := e.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}, vectors)
}

func TestOpenAIEmbedderRejectsWrongDimension(t *testing.T) {
	srv := embeddingsBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	})

	e := NewOpenAIEmbedder("test-key", srv.URL, "text-embedding-3-small", 4, zap.NewNop())

	_, err := e.Embed(context.Background(), []string{"one"})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
