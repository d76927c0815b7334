package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type FileComplaintRequest struct {
	RespondentID int64  `json:"respondent_id,string" binding:"required"`
	Note         string `json:"note" binding:"required,max=2000"`
}

type RespondComplaintRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

type ResolveComplaintRequest struct {
	Resolution model.ComplaintResolution `json:"resolution" binding:"required"`
	Penalty    int64                     `json:"penalty" binding:"gte=0"`
}

type ComplaintResponse struct {
	ID              int64                      `json:"id,string"`
	ComplainantID   int64                      `json:"complainant_id,string"`
	RespondentID    int64                      `json:"respondent_id,string"`
	ComplainantNote string                     `json:"complainant_note"`
	RespondentNote  *string                    `json:"respondent_note,omitempty"`
	Status          model.ComplaintStatus      `json:"status"`
	Resolution      *model.ComplaintResolution `json:"resolution,omitempty"`
	Penalty         int64                      `json:"penalty"`
	CreatedAt       time.Time                  `json:"created_at"`
	RespondedAt     *time.Time                 `json:"responded_at,omitempty"`
	ResolvedAt      *time.Time                 `json:"resolved_at,omitempty"`
}

func ToComplaintResponse(c *model.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:              c.ID,
		ComplainantID:   c.ComplainantID,
		RespondentID:    c.RespondentID,
		ComplainantNote: c.ComplainantNote,
		RespondentNote:  c.RespondentNote,
		Status:          c.Status,
		Resolution:      c.Resolution,
		Penalty:         c.Penalty,
		CreatedAt:       c.CreatedAt,
		RespondedAt:     c.RespondedAt,
		ResolvedAt:      c.ResolvedAt,
	}
}

func ToComplaintResponses(cs []model.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, len(cs))
	for i := range cs {
		out[i] = ToComplaintResponse(&cs[i])
	}
	return out
}
