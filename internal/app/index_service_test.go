package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsrag/internal/chunker"
	"newsrag/internal/embedding"
	"newsrag/internal/model"
	"newsrag/internal/vectorstore"
)

func testArticles() []model.Article {
	long := strings.Repeat("economic growth slowed sharply across major markets this quarter ", 40)
	return []model.Article{
		{
			ID:      model.ArticleID("https://news.example.com/economy"),
			Title:   "Economy slows",
			Content: long,
			URL:     "https://news.example.com/economy",
			Source:  "example.com",
		},
		{
			ID:      model.ArticleID("https://news.example.com/sports"),
			Title:   "Cup final tonight",
			Content: strings.Repeat("the championship final kicks off tonight in front of a full stadium ", 40),
			URL:     "https://news.example.com/sports",
			Source:  "example.com",
		},
	}
}

func newIndexService(t *testing.T, store vectorstore.Store) *IndexService {
	t.Helper()
	c, err := chunker.New(50, 10, 20)
	require.NoError(t, err)
	return NewIndexService(c, embedding.NewHashEmbedder(32), store, zap.NewNop())
}

func TestIndexingIsIdempotent(t *testing.T) {
	store := vectorstore.NewMemory(32)
	svc := newIndexService(t, store)
	ctx := context.Background()

	first, err := svc.IndexArticles(ctx, testArticles())
	require.NoError(t, err)
	require.Greater(t, first, 0)
	require.Equal(t, first, store.Len())

	second, err := svc.IndexArticles(ctx, testArticles())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, first, store.Len(), "re-indexing must not add points")
}

func TestIndexedChunksAreSearchable(t *testing.T) {
	store := vectorstore.NewMemory(32)
	svc := newIndexService(t, store)
	ctx := context.Background()

	_, err := svc.IndexArticles(ctx, testArticles())
	require.NoError(t, err)

	embedder := embedding.NewHashEmbedder(32)
	vectors, err := embedder.Embed(ctx, []string{"championship final stadium"})
	require.NoError(t, err)

	results, err := store.Search(ctx, vectors[0], 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "Cup final tonight", results[0].Title)
}

func TestIndexedPayloadCarriesChunkCounts(t *testing.T) {
	store := vectorstore.NewMemory(32)
	svc := newIndexService(t, store)
	ctx := context.Background()

	articles := testArticles()
	total, err := svc.IndexArticles(ctx, articles)
	require.NoError(t, err)

	embedder := embedding.NewHashEmbedder(32)
	vectors, err := embedder.Embed(ctx, []string{"championship final stadium"})
	require.NoError(t, err)

	results, err := store.Search(ctx, vectors[0], total)
	require.NoError(t, err)
	require.Len(t, results, total)

	// Every chunk of an article must report the same total, the index must
	// stay within it, and per-article totals must sum to the point count.
	perArticle := make(map[string]int)
	for _, r := range results {
		require.Greater(t, r.TotalChunks, 0)
		require.Less(t, r.ChunkIndex, r.TotalChunks)
		if prev, ok := perArticle[r.ArticleID]; ok {
			require.Equal(t, prev, r.TotalChunks)
		}
		perArticle[r.ArticleID] = r.TotalChunks
	}
	sum := 0
	for _, n := range perArticle {
		sum += n
	}
	require.Equal(t, total, sum)
}

func TestIndexEmptyArticleSet(t *testing.T) {
	store := vectorstore.NewMemory(32)
	svc := newIndexService(t, store)

	count, err := svc.IndexArticles(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, store.Len())
}
