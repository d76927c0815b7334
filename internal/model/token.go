package model

import "time"

type TokenReason string

const (
	TokenReasonPurchase       TokenReason = "purchase"
	TokenReasonSubmit         TokenReason = "submit"
	TokenReasonAccept         TokenReason = "accept"
	TokenReasonSave           TokenReason = "save"
	TokenReasonTransform      TokenReason = "transform"
	TokenReasonInviteDeclined TokenReason = "invite_declined"
	TokenReasonPenalty        TokenReason = "complaint_penalty"
	TokenReasonAdjustment     TokenReason = "adjustment"
	TokenReasonRefund         TokenReason = "refund"
)

// TokenTransaction is one ledger entry. Amount is negative for debits.
type TokenTransaction struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Amount       int64       `json:"amount"`
	BalanceAfter int64       `json:"balance_after"`
	Reason       TokenReason `json:"reason"`
	CreatedAt    time.Time   `json:"created_at"`
}

type TokenPack struct {
	Tokens   int64  `json:"tokens"`
	PriceUSD string `json:"price_usd"`
}
