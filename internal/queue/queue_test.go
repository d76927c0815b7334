package queue_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"editflow.app/server/internal/queue"
)

var _ = Describe("Redis stream queue", func() {
	var (
		ctx      context.Context
		mr       *miniredis.Miniredis
		client   *redis.Client
		producer queue.Producer
		consumer *queue.RedisConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.NewMiniRedis()
		Expect(mr.Start()).To(Succeed())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

		producer = queue.NewRedisProducer(client, "events", nil)

		var err error
		consumer, err = queue.NewRedisConsumer(client, queue.ConsumerConfig{
			Stream:      "events",
			Group:       "workers",
			Consumer:    "w1",
			DLQStream:   "events_dlq",
			BatchSize:   10,
			Block:       10 * time.Millisecond,
			MaxAttempts: 3,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = client.Close()
		mr.Close()
	})

	It("delivers an enqueued event with all of its fields", func() {
		docID := int64(42)
		trace := "trace-1"
		Expect(producer.Enqueue(ctx, queue.Event{
			TaskType:         queue.TaskTypeCorrectionRejected,
			UserID:           7,
			EditingSessionID: "sess-1",
			DocumentID:       &docID,
			Cost:             3,
			Original:         "teh",
			Correction:       "the",
			Reason:           "name",
			TraceID:          &trace,
		})).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		msg := msgs[0]
		Expect(msg.ID).NotTo(BeEmpty())
		Expect(msg.TaskType).To(Equal(queue.TaskTypeCorrectionRejected))
		Expect(msg.UserID).To(Equal(int64(7)))
		Expect(msg.EditingSessionID).To(Equal("sess-1"))
		Expect(msg.DocumentID).To(HaveValue(Equal(int64(42))))
		Expect(msg.Cost).To(Equal(3))
		Expect(msg.Original).To(Equal("teh"))
		Expect(msg.Correction).To(Equal("the"))
		Expect(msg.Reason).To(Equal("name"))
		Expect(msg.TraceID).To(Equal("trace-1"))
		Expect(msg.Attempt).To(Equal(1))
	})

	It("refuses unknown task types", func() {
		err := producer.Enqueue(ctx, queue.Event{TaskType: "bogus", UserID: 1, EditingSessionID: "s"})
		Expect(err).To(MatchError(ContainSubstring("unknown task_type")))
	})

	It("returns nothing when the stream is idle", func() {
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())
	})

	It("requeues with the next attempt number", func() {
		Expect(producer.Enqueue(ctx, queue.Event{
			TaskType:         queue.TaskTypeTextSubmitted,
			UserID:           1,
			EditingSessionID: "s",
			Cost:             4,
		})).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		Expect(consumer.Requeue(ctx, msgs[0], "transient")).To(Succeed())

		again, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(HaveLen(1))
		Expect(again[0].ID).NotTo(Equal(msgs[0].ID))
		Expect(again[0].Attempt).To(Equal(2))
		Expect(again[0].Cost).To(Equal(4))

		pending, err := client.XPending(ctx, "events", "workers").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(Equal(int64(1)))
	})

	It("moves a message to the dead letter stream", func() {
		Expect(producer.Enqueue(ctx, queue.Event{
			TaskType:         queue.TaskTypeDocumentSaved,
			UserID:           1,
			EditingSessionID: "s",
		})).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumer.SendDLQ(ctx, msgs[0], "gave up")).To(Succeed())

		dead, err := client.XRange(ctx, "events_dlq", "-", "+").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(dead).To(HaveLen(1))
		Expect(dead[0].Values).To(HaveKeyWithValue("error", "gave up"))
		Expect(dead[0].Values).To(HaveKeyWithValue("task_type", "document_saved"))

		pending, err := client.XPending(ctx, "events", "workers").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})

	It("acks and drops malformed entries", func() {
		Expect(client.XAdd(ctx, &redis.XAddArgs{
			Stream: "events",
			Values: map[string]any{"task_type": "correction_rejected", "user_id": "1", "editing_session_id": "s"},
		}).Err()).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())

		pending, err := client.XPending(ctx, "events", "workers").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})
})

var _ = Describe("ParseMessage", func() {
	DescribeTable("rejects incomplete entries",
		func(values map[string]any, want string) {
			_, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			Expect(err).To(MatchError(ContainSubstring(want)))
		},
		Entry("no task type", map[string]any{"user_id": "1", "editing_session_id": "s"}, "missing task_type"),
		Entry("unknown task type", map[string]any{"task_type": "x", "user_id": "1", "editing_session_id": "s"}, "unknown task_type"),
		Entry("no user", map[string]any{"task_type": "text_submitted", "editing_session_id": "s"}, "missing user_id"),
		Entry("bad user", map[string]any{"task_type": "text_submitted", "user_id": "abc", "editing_session_id": "s"}, "parsing user_id"),
		Entry("no session", map[string]any{"task_type": "text_submitted", "user_id": "1"}, "missing editing_session_id"),
		Entry("bad cost", map[string]any{"task_type": "text_submitted", "user_id": "1", "editing_session_id": "s", "cost": "x"}, "parsing cost"),
	)

	It("defaults the attempt to one", func() {
		msg, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: map[string]any{
			"task_type": "text_submitted", "user_id": "1", "editing_session_id": "s",
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.DocumentID).To(BeNil())
	})
})
