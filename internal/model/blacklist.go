package model

import "time"

type BlacklistRequestStatus string

const (
	BlacklistRequestPending  BlacklistRequestStatus = "pending"
	BlacklistRequestApproved BlacklistRequestStatus = "approved"
	BlacklistRequestRejected BlacklistRequestStatus = "rejected"
)

type BlacklistRequest struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	Word      string                 `json:"word"`
	Status    BlacklistRequestStatus `json:"status"`
	DecidedAt *time.Time             `json:"decided_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
