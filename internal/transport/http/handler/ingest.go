package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsrag/internal/model"
	"newsrag/internal/transport/http/response"
)

// ArticlePublisher enqueues one article for asynchronous archive and
// indexing.
type ArticlePublisher interface {
	Publish(ctx context.Context, article model.Article) error
}

// IngestHandler accepts article batches from the scraping collaborator and
// hands them to the ingest queue; the index worker does the actual archive
// and embedding work.
type IngestHandler struct {
	publisher ArticlePublisher
	logger    *zap.Logger
}

type IngestRequest struct {
	Articles []model.Article `json:"articles" binding:"required,min=1"`
}

func NewIngestHandler(publisher ArticlePublisher, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{publisher: publisher, logger: logger}
}

func (h *IngestHandler) Enqueue(c *gin.Context) {
	if h.publisher == nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, "ingest queue disabled")
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	queued := 0
	for _, article := range req.Articles {
		if article.ID == "" {
			article.ID = model.ArticleID(article.URL)
		}
		if article.Source == "" {
			article.Source = model.SourceDomain(article.URL)
		}
		if err := h.publisher.Publish(c.Request.Context(), article); err != nil {
			h.logger.Error("enqueue article failed",
				zap.String("article_id", article.ID),
				zap.Error(err),
			)
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, "enqueue article failed")
			return
		}
		queued++
	}

	response.OK(c, gin.H{"queued": queued})
}
