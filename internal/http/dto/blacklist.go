package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type WordRequest struct {
	Word string `json:"word" binding:"required,max=64"`
}

type BlacklistResponse struct {
	Words []string `json:"words"`
}

type BlacklistRequestResponse struct {
	ID        int64                        `json:"id,string"`
	UserID    int64                        `json:"user_id,string"`
	Word      string                       `json:"word"`
	Status    model.BlacklistRequestStatus `json:"status"`
	CreatedAt time.Time                    `json:"created_at"`
	DecidedAt *time.Time                   `json:"decided_at,omitempty"`
}

func ToBlacklistRequestResponse(r *model.BlacklistRequest) BlacklistRequestResponse {
	return BlacklistRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Word:      r.Word,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		DecidedAt: r.DecidedAt,
	}
}

func ToBlacklistRequestResponses(rs []model.BlacklistRequest) []BlacklistRequestResponse {
	out := make([]BlacklistRequestResponse, len(rs))
	for i := range rs {
		out[i] = ToBlacklistRequestResponse(&rs[i])
	}
	return out
}
