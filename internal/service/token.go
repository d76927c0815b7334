package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"editflow.app/server/common/id"
	"editflow.app/server/common/otel"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

const maxBalanceAttempts = 5

var (
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidTokenPack   = errors.New("unsupported token pack")
	ErrInvalidAmount      = errors.New("amount must be positive")
	// ErrBalanceContention means the balance kept changing underneath every
	// compare-and-swap attempt.
	ErrBalanceContention = errors.New("token balance is being updated concurrently")
)

// TokenPacks are the purchasable bundles, priced at one cent per token.
var TokenPacks = []model.TokenPack{
	{Tokens: 100, PriceUSD: "1.00"},
	{Tokens: 500, PriceUSD: "5.00"},
	{Tokens: 1000, PriceUSD: "10.00"},
	{Tokens: 5000, PriceUSD: "50.00"},
	{Tokens: 10000, PriceUSD: "100.00"},
}

type TokenService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Packs() []model.TokenPack
	// Purchase credits one of TokenPacks. Payment happens elsewhere.
	Purchase(ctx context.Context, userID, amount int64) (int64, error)
	Debit(ctx context.Context, userID, cost int64, reason model.TokenReason) (int64, error)
	Credit(ctx context.Context, userID, amount int64, reason model.TokenReason) (int64, error)
	History(ctx context.Context, userID int64, limit int32) ([]model.TokenTransaction, error)
}

type tokenService struct {
	txRunner TxRunner
	tokens   store.TokenStore
	metrics  *otel.Metrics
}

func NewTokenService(txRunner TxRunner, tokens store.TokenStore, metrics *otel.Metrics) TokenService {
	return &tokenService{
		txRunner: txRunner,
		tokens:   tokens,
		metrics:  metrics,
	}
}

func (s *tokenService) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.tokens.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return balance, nil
}

func (s *tokenService) Packs() []model.TokenPack {
	return TokenPacks
}

func (s *tokenService) Purchase(ctx context.Context, userID, amount int64) (int64, error) {
	if !validPack(amount) {
		return 0, ErrInvalidTokenPack
	}
	balance, err := s.Credit(ctx, userID, amount, model.TokenReasonPurchase)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "tokens purchased", "user_id", userID, "amount", amount, "balance", balance)
	return balance, nil
}

func (s *tokenService) Debit(ctx context.Context, userID, cost int64, reason model.TokenReason) (int64, error) {
	if cost < 0 {
		return 0, ErrInvalidAmount
	}
	var balance int64
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		balance, _, err = adjustBalance(ctx, sp.Tokens(), userID, -cost, reason, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.metrics.RecordDebit(ctx, string(reason), int(cost))
	return balance, nil
}

func (s *tokenService) Credit(ctx context.Context, userID, amount int64, reason model.TokenReason) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var balance int64
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		balance, _, err = adjustBalance(ctx, sp.Tokens(), userID, amount, reason, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *tokenService) History(ctx context.Context, userID int64, limit int32) ([]model.TokenTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.tokens.ListTransactions(ctx, userID, limit)
}

func validPack(amount int64) bool {
	for _, p := range TokenPacks {
		if p.Tokens == amount {
			return true
		}
	}
	return false
}

// adjustBalance moves a user's balance by delta and appends the matching
// ledger row. Callers run it inside a transaction. A debit that would go
// below zero fails with ErrInsufficientTokens, or with clamp set takes
// whatever is left. It returns the new balance and the delta actually
// applied.
func adjustBalance(ctx context.Context, tokens store.TokenStore, userID, delta int64, reason model.TokenReason, clamp bool) (int64, int64, error) {
	if delta == 0 {
		balance, err := tokens.GetBalance(ctx, userID)
		if err != nil {
			return 0, 0, mapUserErr(err)
		}
		return balance, 0, nil
	}

	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		current, err := tokens.GetBalance(ctx, userID)
		if err != nil {
			return 0, 0, mapUserErr(err)
		}

		applied := delta
		if current+applied < 0 {
			if !clamp {
				return 0, 0, fmt.Errorf("%w: balance %d, cost %d", ErrInsufficientTokens, current, -delta)
			}
			applied = -current
		}
		if applied == 0 {
			return current, 0, nil
		}

		next := current + applied
		swapped, err := tokens.CompareAndSwapBalance(ctx, userID, current, next)
		if err != nil {
			return 0, 0, fmt.Errorf("updating balance: %w", err)
		}
		if !swapped {
			slog.DebugContext(ctx, "token balance changed, retrying",
				"user_id", userID,
				"attempt", attempt)
			continue
		}

		txn := &model.TokenTransaction{
			ID:           id.New(),
			UserID:       userID,
			Amount:       applied,
			BalanceAfter: next,
			Reason:       reason,
		}
		if err := tokens.AddTransaction(ctx, txn); err != nil {
			return 0, 0, fmt.Errorf("recording token transaction: %w", err)
		}
		return next, applied, nil
	}

	return 0, 0, ErrBalanceContention
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
