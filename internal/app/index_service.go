package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"newsrag/internal/chunker"
	"newsrag/internal/embedding"
	"newsrag/internal/model"
	"newsrag/internal/vectorstore"
)

const (
	// Embedding providers commonly reject large batches; keep requests small
	// and pause between them so bulk indexing does not trip rate limits.
	embeddingBatchSize = 10
	embeddingBatchGap  = 200 * time.Millisecond
)

// IndexService turns articles into chunk vectors and upserts them into the
// vector store. Point ids are deterministic, so running it again over the
// same articles rewrites points in place.
type IndexService struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	store    vectorstore.Store
	logger   *zap.Logger
}

func NewIndexService(c *chunker.Chunker, e embedding.Embedder, store vectorstore.Store, logger *zap.Logger) *IndexService {
	return &IndexService{chunker: c, embedder: e, store: store, logger: logger}
}

// IndexArticles chunks, embeds and upserts the given articles, returning the
// number of points written.
func (s *IndexService) IndexArticles(ctx context.Context, articles []model.Article) (int, error) {
	if err := s.store.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensure collection failed: %w", err)
	}

	var points []vectorstore.Point
	var texts []string
	for _, article := range articles {
		windows := s.chunker.Split(article.Content)
		for idx, text := range windows {
			chunk := model.Chunk{
				ArticleID:   article.ID,
				Index:       idx,
				Text:        text,
				TotalChunks: len(windows),
			}
			points = append(points, vectorstore.Point{
				ID: model.PointID(chunk.ArticleID, chunk.Index),
				Payload: model.SearchResult{
					ArticleID:     chunk.ArticleID,
					Title:         article.Title,
					Content:       chunk.Text,
					URL:           article.URL,
					Source:        article.Source,
					PublishedDate: article.PublishedDate,
					ChunkIndex:    chunk.Index,
					TotalChunks:   chunk.TotalChunks,
				},
			})
			texts = append(texts, chunk.Text)
		}
	}
	if len(points) == 0 {
		s.logger.Warn("no indexable chunks in article set", zap.Int("articles", len(articles)))
		return 0, nil
	}

	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := s.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return 0, fmt.Errorf("embed chunk batch failed: %w", err)
		}
		for i, vec := range vectors {
			points[start+i].Vector = vec
		}
		if end < len(texts) {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(embeddingBatchGap):
			}
		}
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return 0, err
	}
	s.logger.Info("indexed articles",
		zap.Int("articles", len(articles)),
		zap.Int("points", len(points)),
	)
	return len(points), nil
}

// LoadArticlesFile reads the batch file the ingestion collaborator produces:
// a JSON array of articles.
func LoadArticlesFile(path string) ([]model.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles file failed: %w", err)
	}
	var articles []model.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, fmt.Errorf("parse articles file failed: %w", err)
	}
	return articles, nil
}
