package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"editflow.app/server/common/logger"
	"editflow.app/server/common/otel"
	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/store"
)

// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	Feedback() store.FeedbackStore
	Stats() store.StatsStore
}

// Mirrors service.TxRunner - defined here to avoid import cycles.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type Config struct {
	MaxAttempts int
	// ErrorBackoff is how long Run waits after a failed read.
	ErrorBackoff time.Duration
}

type Worker struct {
	consumer  Consumer
	txRunner  TxRunner
	processor EventProcessor
	metrics   *otel.Metrics
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, txRunner TxRunner, processor EventProcessor, metrics *otel.Metrics, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		txRunner:  txRunner,
		processor: processor,
		metrics:   metrics,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "editflow.worker",
	})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorBackoff):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"task_type", msg.TaskType)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"task_type", msg.TaskType)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// Exported so it can be reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	msgID := msg.ID
	userID := msg.UserID
	sessionID := msg.EditingSessionID
	eventType := string(msg.TaskType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID:        &msgID,
		UserID:           &userID,
		EditingSessionID: &sessionID,
		DocumentID:       msg.DocumentID,
		EventType:        &eventType,
	})
	if msg.TraceID != "" {
		traceID := msg.TraceID
		ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: &traceID})
	}

	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker."+eventType, trace.WithSpanKind(trace.SpanKindConsumer))
	ctx = span.Context()

	slog.InfoContext(ctx, "processing message", "attempt", msg.Attempt)

	err := w.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		return w.processor.Process(ctx, msg, sp)
	})
	span.End(err)
	w.metrics.RecordEvent(ctx, eventType, err)
	if err != nil {
		// Not acked: the caller requeues or dead-letters it.
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - the reclaimer will redeliver it.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}

	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"task_type", msg.TaskType,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"task_type", msg.TaskType,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
