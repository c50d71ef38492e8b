package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"newsrag/internal/model"
)

// ArticlePublisher pushes scraped articles onto the ingest queue so the
// index worker can archive and embed them asynchronously.
type ArticlePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewArticlePublisher(conn *amqp.Connection, queueName string) *ArticlePublisher {
	return &ArticlePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ArticlePublisher) Publish(ctx context.Context, article model.Article) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish article failed: %w", err)
	}
	return nil
}
