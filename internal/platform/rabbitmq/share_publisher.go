package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"stocksage/internal/model"
)

// SharePublisher pushes created records onto the archive queue.
type SharePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewSharePublisher(conn *amqp.Connection, queueName string) *SharePublisher {
	return &SharePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *SharePublisher) Publish(ctx context.Context, record model.SharedRecord) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(model.NewShareArchiveEvent(record))
	if err != nil {
		return fmt.Errorf("marshal share archive payload failed: %w", err)
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
			MessageId:    record.ID,
		},
	); err != nil {
		return fmt.Errorf("publish share archive message failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable queue used by both publisher and worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue failed: %w", err)
	}
	return q, nil
}
