package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

var _ = Describe("TokenService", func() {
	var (
		ctx    context.Context
		stores *mockStoreProvider
		tokens *memTokenStore
		svc    service.TokenService
	)

	BeforeEach(func() {
		ctx = context.Background()
		stores = newMockStoreProvider()
		tokens = newMemTokenStore(map[int64]int64{1: 10})
		stores.tokens = tokens
		svc = service.NewTokenService(&mockTxRunner{stores: stores}, tokens, nil)
	})

	Describe("Debit", func() {
		It("lowers the balance and records a ledger row", func() {
			balance, err := svc.Debit(ctx, 1, 4, model.TokenReasonSubmit)

			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(6)))
			Expect(tokens.balance(1)).To(Equal(int64(6)))
			Expect(tokens.txns).To(HaveLen(1))
			Expect(tokens.txns[0].Amount).To(Equal(int64(-4)))
			Expect(tokens.txns[0].BalanceAfter).To(Equal(int64(6)))
			Expect(tokens.txns[0].Reason).To(Equal(model.TokenReasonSubmit))
		})

		It("refuses to go below zero", func() {
			_, err := svc.Debit(ctx, 1, 11, model.TokenReasonSave)

			Expect(err).To(MatchError(service.ErrInsufficientTokens))
			Expect(tokens.balance(1)).To(Equal(int64(10)))
			Expect(tokens.txns).To(BeEmpty())
		})

		It("allows spending the exact balance", func() {
			balance, err := svc.Debit(ctx, 1, 10, model.TokenReasonSave)

			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(BeZero())
		})

		It("retries when the balance changes underneath", func() {
			tokens.failSwaps = 2

			balance, err := svc.Debit(ctx, 1, 3, model.TokenReasonAccept)

			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(7)))
		})

		It("gives up after repeated contention", func() {
			tokens.failSwaps = 100

			_, err := svc.Debit(ctx, 1, 3, model.TokenReasonAccept)

			Expect(err).To(MatchError(service.ErrBalanceContention))
			Expect(tokens.txns).To(BeEmpty())
		})

		It("reports unknown users", func() {
			_, err := svc.Debit(ctx, 99, 1, model.TokenReasonAccept)
			Expect(err).To(MatchError(service.ErrUserNotFound))
		})

		It("does nothing for a zero cost", func() {
			balance, err := svc.Debit(ctx, 1, 0, model.TokenReasonAccept)

			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(10)))
			Expect(tokens.txns).To(BeEmpty())
		})
	})

	Describe("Purchase", func() {
		DescribeTable("accepts only the listed packs",
			func(amount int64, ok bool) {
				_, err := svc.Purchase(ctx, 1, amount)
				if ok {
					Expect(err).NotTo(HaveOccurred())
					Expect(tokens.balance(1)).To(Equal(10 + amount))
				} else {
					Expect(err).To(MatchError(service.ErrInvalidTokenPack))
					Expect(tokens.balance(1)).To(Equal(int64(10)))
				}
			},
			Entry("100", int64(100), true),
			Entry("500", int64(500), true),
			Entry("1000", int64(1000), true),
			Entry("5000", int64(5000), true),
			Entry("10000", int64(10000), true),
			Entry("arbitrary", int64(42), false),
			Entry("negative", int64(-100), false),
		)

		It("records the purchase in the ledger", func() {
			_, err := svc.Purchase(ctx, 1, 500)

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.reasons()).To(Equal([]model.TokenReason{model.TokenReasonPurchase}))
		})
	})

	It("lists the packs at one cent per token", func() {
		packs := svc.Packs()
		Expect(packs).To(HaveLen(5))
		Expect(packs[0]).To(Equal(model.TokenPack{Tokens: 100, PriceUSD: "1.00"}))
		Expect(packs[4]).To(Equal(model.TokenPack{Tokens: 10000, PriceUSD: "100.00"}))
	})

	It("rejects non-positive credits", func() {
		_, err := svc.Credit(ctx, 1, 0, model.TokenReasonAdjustment)
		Expect(err).To(MatchError(service.ErrInvalidAmount))
	})
})
