package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, event Event) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, event Event) error {
	if !event.TaskType.Valid() {
		return fmt.Errorf("enqueue event: unknown task_type %q", event.TaskType)
	}

	attempt := event.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	msg := Message{
		TaskType:         event.TaskType,
		UserID:           event.UserID,
		EditingSessionID: event.EditingSessionID,
		DocumentID:       event.DocumentID,
		Cost:             event.Cost,
		Original:         event.Original,
		Correction:       event.Correction,
		Reason:           event.Reason,
	}
	if event.TraceID != nil {
		msg.TraceID = *event.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(msg, attempt),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued editor event",
		"task_type", event.TaskType,
		"user_id", event.UserID,
		"editing_session_id", event.EditingSessionID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
