package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

type tokenStore struct {
	db db.DBTX
}

func newTokenStore(conn db.DBTX) TokenStore {
	return &tokenStore{db: conn}
}

func (s *tokenStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	if err := s.db.QueryRow(ctx, `SELECT tokens FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		return 0, mapErr(err)
	}
	return balance, nil
}

func (s *tokenStore) CompareAndSwapBalance(ctx context.Context, userID, expected, next int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET tokens = $3, updated_at = now()
		WHERE id = $1 AND tokens = $2`, userID, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *tokenStore) AddTransaction(ctx context.Context, txn *model.TokenTransaction) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO token_transactions (id, user_id, amount, balance_after, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		txn.ID, txn.UserID, txn.Amount, txn.BalanceAfter, string(txn.Reason),
	).Scan(&txn.CreatedAt)
	return mapErr(err)
}

func (s *tokenStore) ListTransactions(ctx context.Context, userID int64, limit int32) ([]model.TokenTransaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, amount, balance_after, reason, created_at
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(row pgx.Row) (*model.TokenTransaction, error) {
		var t model.TokenTransaction
		var reason string
		if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.BalanceAfter, &reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Reason = model.TokenReason(reason)
		return &t, nil
	})
}
