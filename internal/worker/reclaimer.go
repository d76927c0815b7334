package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"editflow.app/server/common/logger"
	"editflow.app/server/internal/queue"
)

type RedisReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
	// MaxDeliveries is how many times a stale event may be handed out before
	// it is dead-lettered instead of retried again.
	MaxDeliveries int64
}

// RedisReclaimer takes over editor events left pending by a worker that died
// between XREADGROUP and XACK, so feedback rows and stats are not lost.
type RedisReclaimer struct {
	client    *redis.Client
	cfg       RedisReclaimerConfig
	consumer  *queue.RedisConsumer
	processor queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer *queue.RedisConsumer, processor queue.MessageProcessor) *RedisReclaimer {
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	return &RedisReclaimer{
		client:    client,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run polls for stale events every Interval until Stop is called or ctx ends.
func (r *RedisReclaimer) Run(ctx context.Context) {
	defer close(r.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "editflow.worker.reclaimer",
	})

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"max_deliveries", r.cfg.MaxDeliveries)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if err := r.sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim sweep failed", "error", err)
			}
		}
	}
}

func (r *RedisReclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

func (r *RedisReclaimer) sweep(ctx context.Context) error {
	stale, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Idle:   r.cfg.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("listing pending events: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "reclaiming stale events", "count", len(stale))

	for _, p := range stale {
		if err := r.reclaim(ctx, p); err != nil {
			slog.ErrorContext(ctx, "failed to reclaim event",
				"error", err,
				"message_id", p.ID,
				"previous_consumer", p.Consumer,
				"deliveries", p.RetryCount)
		}
	}
	return nil
}

func (r *RedisReclaimer) reclaim(ctx context.Context, p redis.XPendingExt) error {
	msgID := p.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msgID})

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Messages: []string{p.ID},
	}).Result()
	if err != nil {
		return fmt.Errorf("claiming event: %w", err)
	}
	if len(claimed) == 0 {
		// Another reclaimer got there first.
		return nil
	}

	raw := claimed[0]
	msg, err := queue.ParseMessage(raw)
	if err != nil {
		slog.ErrorContext(ctx, "dropping unparseable event", "error", err)
		return r.consumer.Ack(ctx, queue.Message{ID: raw.ID, Raw: raw})
	}

	if p.RetryCount >= r.cfg.MaxDeliveries {
		return r.consumer.SendDLQ(ctx, msg, fmt.Sprintf("abandoned after %d deliveries", p.RetryCount))
	}

	start := time.Now()
	if err := r.processor(ctx, msg); err != nil {
		// Left pending; the next sweep picks it up again.
		return fmt.Errorf("processing reclaimed %s event: %w", msg.TaskType, err)
	}

	slog.InfoContext(ctx, "reclaimed event processed",
		"task_type", msg.TaskType,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
