package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsrag/internal/model"
)

const upsertBatchSize = 100

// Qdrant is a minimal REST client to a Qdrant collection using cosine
// distance.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	httpClient *http.Client
	logger     *zap.Logger
}

func NewQdrant(baseURL, apiKey, collection string, dimension int, logger *zap.Logger) *Qdrant {
	return &Qdrant{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// EnsureCollection creates the collection if absent. If it already exists its
// configured vector size must match the embedder dimension; a mismatch is
// ErrDimensionMismatch and fatal to startup.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := q.doJSON(ctx, http.MethodGet, q.collectionURL(), nil, &info)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		if got := info.Result.Config.Params.Vectors.Size; got != q.dimension {
			return fmt.Errorf("collection %s has size %d, embedder produces %d: %w",
				q.collection, got, q.dimension, ErrDimensionMismatch)
		}
		return nil
	case status != http.StatusNotFound:
		// Only a definite "absent" may trigger creation; an auth or server
		// error must not be papered over with a PUT.
		return fmt.Errorf("get collection %s failed: status %d", q.collection, status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	status, err = q.doJSON(ctx, http.MethodPut, q.collectionURL(), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("create collection %s failed: status %d", q.collection, status)
	}
	q.logger.Info("created qdrant collection",
		zap.String("collection", q.collection),
		zap.Int("dimension", q.dimension),
	)
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := q.upsertBatch(ctx, points[start:end]); err != nil {
			return fmt.Errorf("upsert batch %d failed: %w", start/upsertBatchSize+1, err)
		}
		q.logger.Debug("indexed batch",
			zap.Int("batch", start/upsertBatchSize+1),
			zap.Int("points", end-start),
		)
	}
	return nil
}

func (q *Qdrant) upsertBatch(ctx context.Context, points []Point) error {
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"article_id":     p.Payload.ArticleID,
				"title":          p.Payload.Title,
				"content":        p.Payload.Content,
				"url":            p.Payload.URL,
				"source":         p.Payload.Source,
				"published_date": p.Payload.PublishedDate,
				"chunk_index":    p.Payload.ChunkIndex,
				"total_chunks":   p.Payload.TotalChunks,
			},
		}
	}
	body := map[string]any{"points": payload}
	url := q.collectionURL() + "/points?wait=true"
	status, err := q.doJSON(ctx, http.MethodPut, url, body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant upsert status %d", status)
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]model.SearchResult, error) {
	if len(vector) != q.dimension {
		return nil, fmt.Errorf("query vector has %d dims, collection expects %d: %w",
			len(vector), q.dimension, ErrDimensionMismatch)
	}
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := q.collectionURL() + "/points/search"
	status, err := q.doJSON(ctx, http.MethodPost, url, body, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search status %d", status)
	}

	results := make([]model.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		item := model.SearchResult{Score: r.Score}
		if v, ok := r.Payload["article_id"].(string); ok {
			item.ArticleID = v
		}
		if v, ok := r.Payload["title"].(string); ok {
			item.Title = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			item.Content = v
		}
		if v, ok := r.Payload["url"].(string); ok {
			item.URL = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			item.Source = v
		}
		if v, ok := r.Payload["published_date"].(string); ok {
			item.PublishedDate = v
		}
		if v, ok := r.Payload["chunk_index"].(float64); ok {
			item.ChunkIndex = int(v)
		}
		if v, ok := r.Payload["total_chunks"].(float64); ok {
			item.TotalChunks = int(v)
		}
		results = append(results, item)
	}
	return results, nil
}

// Ping is a read-only existence check on the collection, safe for health
// probes.
func (q *Qdrant) Ping(ctx context.Context) error {
	status, err := q.doJSON(ctx, http.MethodGet, q.collectionURL(), nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("collection %s unavailable: status %d", q.collection, status)
	}
	return nil
}

func (q *Qdrant) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", q.baseURL, q.collection)
}

func (q *Qdrant) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal qdrant request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode qdrant response failed: %w", err)
		}
	}
	return resp.StatusCode, nil
}
