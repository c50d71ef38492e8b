package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"newsrag/internal/app"
	"newsrag/internal/model"
	"newsrag/internal/repository"
)

// ArticleIndexWorker consumes articles published by the ingestion service,
// archives them and feeds them through the indexing pipeline. Malformed or
// failed deliveries are nacked without requeue so a poison article cannot
// wedge the queue.
type ArticleIndexWorker struct {
	conn      *amqp.Connection
	repo      *repository.ArticleRepository
	indexer   *app.IndexService
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewArticleIndexWorker(conn *amqp.Connection, repo *repository.ArticleRepository, indexer *app.IndexService, queueName string, logger *zap.Logger) *ArticleIndexWorker {
	return &ArticleIndexWorker{
		conn:      conn,
		repo:      repo,
		indexer:   indexer,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *ArticleIndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *ArticleIndexWorker) handle(ctx context.Context, d amqp.Delivery) {
	var article model.Article
	if err := json.Unmarshal(d.Body, &article); err != nil {
		w.logger.Warn("worker decode article failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if article.ID == "" {
		article.ID = model.ArticleID(article.URL)
	}
	if article.Source == "" {
		article.Source = model.SourceDomain(article.URL)
	}

	if w.repo != nil {
		if err := w.repo.Upsert(&article); err != nil {
			w.logger.Error("worker archive article failed",
				zap.String("article_id", article.ID),
				zap.Error(err),
			)
			_ = d.Nack(false, false)
			return
		}
	}

	points, err := w.indexer.IndexArticles(ctx, []model.Article{article})
	if err != nil {
		w.logger.Error("worker index article failed",
			zap.String("article_id", article.ID),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	w.logger.Info("article ingested",
		zap.String("article_id", article.ID),
		zap.String("source", article.Source),
		zap.Int("points", points),
	)
	_ = d.Ack(false)
}

func (w *ArticleIndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
