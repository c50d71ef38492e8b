package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsrag/internal/model"
)

type fakePublisher struct {
	published []model.Article
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, article model.Article) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, article)
	return nil
}

func newIngestRouter(publisher ArticlePublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewIngestHandler(publisher, zap.NewNop())
	router.POST("/admin/articles", h.Enqueue)
	return router
}

func postArticles(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/articles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIngestEnqueuesArticles(t *testing.T) {
	publisher := &fakePublisher{}
	router := newIngestRouter(publisher)

	rec := postArticles(router, `{"articles":[
		{"title":"Cup final tonight","content":"...","url":"https://news.example.com/cup-final"},
		{"id":"abc123","title":"Budget vote","content":"...","url":"https://news.example.com/budget","source":"example.com"}
	]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, publisher.published, 2)

	first := publisher.published[0]
	assert.Equal(t, model.ArticleID("https://news.example.com/cup-final"), first.ID)
	assert.Equal(t, "news.example.com", first.Source)

	second := publisher.published[1]
	assert.Equal(t, "abc123", second.ID)
	assert.Equal(t, "example.com", second.Source)
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	router := newIngestRouter(&fakePublisher{})

	rec := postArticles(router, `{"articles":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestUnavailableWithoutQueue(t *testing.T) {
	router := newIngestRouter(nil)

	rec := postArticles(router, `{"articles":[{"title":"x","content":"y","url":"https://news.example.com/x"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIngestReportsEnqueueFailure(t *testing.T) {
	router := newIngestRouter(&fakePublisher{err: errors.New("channel closed")})

	rec := postArticles(router, `{"articles":[{"title":"x","content":"y","url":"https://news.example.com/x"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
