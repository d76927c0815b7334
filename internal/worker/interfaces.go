package worker

import (
	"context"

	"editflow.app/server/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// EventProcessor applies one editor event to the stores it is handed.
type EventProcessor interface {
	Process(ctx context.Context, msg queue.Message, stores StoreProvider) error
}
