package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx       context.Context
		consumer  *mockConsumer
		txRunner  *mockTxRunner
		processor *mockProcessor
		w         *worker.Worker
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		txRunner = &mockTxRunner{stores: &mockStoreProvider{
			feedback: &mockFeedbackStore{},
			stats:    &mockStatsStore{},
		}}
		processor = &mockProcessor{}
		w = worker.New(consumer, txRunner, processor, nil, worker.Config{
			MaxAttempts:  3,
			ErrorBackoff: 10 * time.Millisecond,
		})
	})

	Describe("ProcessMessage", func() {
		It("acks after the transaction succeeds", func() {
			msg := queue.Message{ID: "1-0", TaskType: queue.TaskTypeTextSubmitted, UserID: 1, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			acked, _, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("1-0"))
			Expect(txRunner.calls).To(Equal(1))
		})

		It("leaves the message unacked when processing fails", func() {
			processor.processFn = func(context.Context, queue.Message, worker.StoreProvider) error {
				return errors.New("boom")
			}
			msg := queue.Message{ID: "1-0", TaskType: queue.TaskTypeTextSubmitted, UserID: 1, Attempt: 1}

			err := w.ProcessMessage(ctx, msg)

			Expect(err).To(MatchError(ContainSubstring("boom")))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(BeEmpty())
		})
	})

	Describe("Run", func() {
		It("requeues failures below the attempt limit and dead-letters the rest", func() {
			processor.processFn = func(_ context.Context, msg queue.Message, _ worker.StoreProvider) error {
				if msg.ID == "ok" {
					return nil
				}
				return errors.New("boom")
			}
			consumer.batches = [][]queue.Message{{
				{ID: "ok", TaskType: queue.TaskTypeTextSubmitted, Attempt: 1},
				{ID: "retry", TaskType: queue.TaskTypeTextSubmitted, Attempt: 1},
				{ID: "dead", TaskType: queue.TaskTypeTextSubmitted, Attempt: 3},
			}}

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(func() []string {
				_, _, dlq := consumer.snapshot()
				return dlq
			}).Should(ConsistOf("dead"))
			w.Stop()
			Eventually(done).Should(Receive(BeNil()))

			acked, requeued, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("ok"))
			Expect(requeued).To(ConsistOf("retry"))
		})

		It("recovers from a panicking processor", func() {
			processor.processFn = func(context.Context, queue.Message, worker.StoreProvider) error {
				panic("bad event")
			}
			consumer.batches = [][]queue.Message{{
				{ID: "p", TaskType: queue.TaskTypeTextSubmitted, Attempt: 1},
			}}

			go func() { _ = w.Run(ctx) }()

			Eventually(func() []string {
				_, requeued, _ := consumer.snapshot()
				return requeued
			}).Should(ConsistOf("p"))
			w.Stop()
		})

		It("returns when the context is cancelled", func() {
			consumer.readErr = errors.New("redis down")
			cctx, cancel := context.WithCancel(ctx)

			done := make(chan error, 1)
			go func() { done <- w.Run(cctx) }()
			cancel()

			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
