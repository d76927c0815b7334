package model

import "time"

// CorrectionFeedback records a suggestion the user rejected, with their
// optional reason.
type CorrectionFeedback struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	EditingSessionID string    `json:"editing_session_id"`
	Original         string    `json:"original"`
	Correction       string    `json:"correction"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
}

type UserStats struct {
	UserID      int64     `json:"user_id"`
	EditedTexts int64     `json:"edited_texts"`
	UsedTokens  int64     `json:"used_tokens"`
	Corrections int64     `json:"corrections"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatsDelta is an increment applied to a user's counters.
type StatsDelta struct {
	EditedTexts int64
	UsedTokens  int64
	Corrections int64
}
