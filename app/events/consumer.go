package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Acknowledger is the subset of amqp.Delivery the handler needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consume declares the queue, binds it to the post-published routing key and
// hands every delivery to HandleDelivery until ctx is done or the channel
// closes.
func Consume(ctx context.Context, ch *amqp.Channel, consumer string, logger *slog.Logger) error {
	if err := DeclareExchange(ch); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, consumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger.Info("consumer started", "queue", q.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return nil
			}
			HandleDelivery(logger, d.Body, &d)
		}
	}
}

// HandleDelivery decodes one message; malformed bodies are dropped without
// requeue, other event types are acked and ignored.
func HandleDelivery(logger *slog.Logger, body []byte, ack Acknowledger) {
	var e PostPublished
	if err := json.Unmarshal(body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = ack.Nack(false, false)
		return
	}
	if e.Type != TypePostPublished {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = ack.Ack(false)
		return
	}
	logger.Info("post published event received",
		"post_id", e.Payload.PostID,
		"slug", e.Payload.Slug,
		"title", e.Payload.Title,
	)
	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
