package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"stocksage/internal/model"
	"stocksage/internal/platform/rabbitmq"
)

// ArchiveWriter is the durable side of the archive pipeline.
type ArchiveWriter interface {
	Put(ctx context.Context, record *model.SharedRecord) error
}

// ShareArchiveWorker drains the archive queue into durable storage.
type ShareArchiveWorker struct {
	conn      *amqp.Connection
	archive   ArchiveWriter
	queueName string
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewShareArchiveWorker(conn *amqp.Connection, archive ArchiveWriter, queueName string, log zerolog.Logger) *ShareArchiveWorker {
	return &ShareArchiveWorker{
		conn:      conn,
		archive:   archive,
		queueName: queueName,
		log:       log.With().Str("component", "share_archive_worker").Logger(),
	}
}

func (w *ShareArchiveWorker) Start(ctx context.Context) error {
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

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
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
				if err := w.Handle(workerCtx, d.Body); err != nil {
					w.log.Error().Err(err).Str("message_id", d.MessageId).Msg("archive shared conversation failed")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Handle decodes one queue payload and writes it to the archive.
func (w *ShareArchiveWorker) Handle(ctx context.Context, body []byte) error {
	var event model.ShareArchiveEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode share archive payload failed: %w", err)
	}
	if event.Record.ID == "" {
		return fmt.Errorf("share archive payload has no id")
	}

	record := event.SharedRecord()
	if err := w.archive.Put(ctx, &record); err != nil {
		return err
	}
	w.log.Debug().Str("share_id", record.ID).Msg("archived shared conversation")
	return nil
}

func (w *ShareArchiveWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
