package store_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"editflow.app/server/internal/editor"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

var _ = Describe("EditingSessionStore", func() {
	var (
		ctx      context.Context
		mr       *miniredis.Miniredis
		rdb      *redis.Client
		sessions store.EditingSessionStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.NewMiniRedis()
		Expect(mr.Start()).To(Succeed())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		sessions = store.NewEditingSessionStore(rdb, time.Hour)
	})

	AfterEach(func() {
		_ = rdb.Close()
		mr.Close()
	})

	newSession := func(id string) *model.EditingSession {
		sess := &model.EditingSession{
			ID:        id,
			UserID:    42,
			Title:     "Draft",
			Blacklist: []string{"darn"},
			CreatedAt: time.Now().UTC(),
		}
		sess.Replace([]editor.Segment{
			editor.NormalSegment{Text: "I "},
			editor.ErrorSegment{Text: "has", Correction: "have", Status: editor.StatusPending},
			editor.NormalSegment{Text: " it"},
		})
		return sess
	}

	It("round-trips a session through msgpack", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())

		got, err := sessions.Get(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.UserID).To(Equal(int64(42)))
		Expect(got.Blacklist).To(Equal([]string{"darn"}))
		Expect(got.Segments).To(HaveLen(3))
		Expect(got.Segments[1].Correction).To(Equal("have"))
		Expect(got.Text()).To(Equal("I has it"))
	})

	It("refuses to overwrite an existing session on create", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())
		Expect(sessions.Create(ctx, newSession("s1"))).To(MatchError(store.ErrConflict))
	})

	It("returns ErrNotFound for unknown and expired sessions", func() {
		_, err := sessions.Get(ctx, "missing")
		Expect(err).To(MatchError(store.ErrNotFound))

		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())
		mr.FastForward(2 * time.Hour)
		_, err = sessions.Get(ctx, "s1")
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	It("applies updates and refreshes the ttl", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())
		mr.FastForward(50 * time.Minute)

		updated, err := sessions.Update(ctx, "s1", func(sess *model.EditingSession) error {
			review, err := sess.Review()
			if err != nil {
				return err
			}
			if err := review.Accept(); err != nil {
				return err
			}
			sess.SetReview(review)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Cursor).To(Equal(1))
		Expect(updated.Text()).To(Equal("I have it"))
		Expect(mr.TTL("editflow:editing_session:s1")).To(Equal(time.Hour))
	})

	It("writes nothing when the update function fails", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())
		boom := errors.New("boom")

		_, err := sessions.Update(ctx, "s1", func(sess *model.EditingSession) error {
			sess.Title = "changed"
			return boom
		})
		Expect(err).To(MatchError(boom))

		got, err := sessions.Get(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Draft"))
	})

	It("serializes concurrent updates", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())

		var wg sync.WaitGroup
		var mu sync.Mutex
		var failures int
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := sessions.Update(ctx, "s1", func(sess *model.EditingSession) error {
					sess.Applied++
					return nil
				})
				if err != nil {
					Expect(err).To(MatchError(store.ErrTxConflict))
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		got, err := sessions.Get(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Applied).To(Equal(4 - failures))
	})

	It("deletes sessions", func() {
		Expect(sessions.Create(ctx, newSession("s1"))).To(Succeed())
		Expect(sessions.Delete(ctx, "s1")).To(Succeed())
		Expect(sessions.Delete(ctx, "s1")).To(MatchError(store.ErrNotFound))
	})
})

var _ = Describe("CooldownStore", func() {
	var (
		mr        *miniredis.Miniredis
		rdb       *redis.Client
		cooldowns store.CooldownStore
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.NewMiniRedis()
		Expect(mr.Start()).To(Succeed())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cooldowns = store.NewCooldownStore(rdb)
	})

	AfterEach(func() {
		_ = rdb.Close()
		mr.Close()
	})

	It("blocks a second acquire until the ttl passes", func() {
		ok, _, err := cooldowns.Acquire(ctx, 7, 3*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, left, err := cooldowns.Acquire(ctx, 7, 3*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(left).To(BeNumerically(">", 2*time.Minute))

		mr.FastForward(3 * time.Minute)
		ok, _, err = cooldowns.Acquire(ctx, 7, 3*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("keeps users independent and can be released", func() {
		ok, _, _ := cooldowns.Acquire(ctx, 1, time.Minute)
		Expect(ok).To(BeTrue())
		ok, _, _ = cooldowns.Acquire(ctx, 2, time.Minute)
		Expect(ok).To(BeTrue())

		Expect(cooldowns.Release(ctx, 1)).To(Succeed())
		ok, _, _ = cooldowns.Acquire(ctx, 1, time.Minute)
		Expect(ok).To(BeTrue())
	})
})
