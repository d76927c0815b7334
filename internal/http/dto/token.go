package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type PurchaseRequest struct {
	Tokens int64 `json:"tokens" binding:"required,gt=0"`
}

type BalanceResponse struct {
	Tokens int64 `json:"tokens"`
}

type TokenTransactionResponse struct {
	ID           int64             `json:"id,string"`
	Amount       int64             `json:"amount"`
	BalanceAfter int64             `json:"balance_after"`
	Reason       model.TokenReason `json:"reason"`
	CreatedAt    time.Time         `json:"created_at"`
}

func ToTokenTransactions(txns []model.TokenTransaction) []TokenTransactionResponse {
	out := make([]TokenTransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = TokenTransactionResponse{
			ID:           t.ID,
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			Reason:       t.Reason,
			CreatedAt:    t.CreatedAt,
		}
	}
	return out
}
