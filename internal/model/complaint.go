package model

import "time"

type ComplaintStatus string

const (
	ComplaintStatusOpen     ComplaintStatus = "open"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

type ComplaintResolution string

const (
	ResolutionDismiss             ComplaintResolution = "dismiss"
	ResolutionPenalizeRespondent  ComplaintResolution = "penalize_respondent"
	ResolutionPenalizeComplainant ComplaintResolution = "penalize_complainant"
)

func (r ComplaintResolution) Valid() bool {
	switch r {
	case ResolutionDismiss, ResolutionPenalizeRespondent, ResolutionPenalizeComplainant:
		return true
	}
	return false
}

type Complaint struct {
	ID              int64                `json:"id"`
	ComplainantID   int64                `json:"complainant_id"`
	RespondentID    int64                `json:"respondent_id"`
	ComplainantNote string               `json:"complainant_note"`
	RespondentNote  *string              `json:"respondent_note,omitempty"`
	Status          ComplaintStatus      `json:"status"`
	Resolution      *ComplaintResolution `json:"resolution,omitempty"`
	Penalty         int64                `json:"penalty"`
	RespondedAt     *time.Time           `json:"responded_at,omitempty"`
	ResolvedAt      *time.Time           `json:"resolved_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}
