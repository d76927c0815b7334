package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type CreateInvitationRequest struct {
	Username string `json:"username" binding:"required,max=64"`
}

type InvitationTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type InvitationResponse struct {
	ID          int64                  `json:"id,string"`
	DocumentID  int64                  `json:"document_id,string"`
	InviterID   int64                  `json:"inviter_id,string"`
	InviteeID   int64                  `json:"invitee_id,string"`
	Token       string                 `json:"token,omitempty"`
	Status      model.InvitationStatus `json:"status"`
	ExpiresAt   time.Time              `json:"expires_at"`
	CreatedAt   time.Time              `json:"created_at"`
	RespondedAt *time.Time             `json:"responded_at,omitempty"`
}

// ToInvitationResponse hides the token unless withToken is set. Only the
// invitee needs it to answer.
func ToInvitationResponse(inv *model.Invitation, withToken bool) InvitationResponse {
	resp := InvitationResponse{
		ID:          inv.ID,
		DocumentID:  inv.DocumentID,
		InviterID:   inv.InviterID,
		InviteeID:   inv.InviteeID,
		Status:      inv.Status,
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
		RespondedAt: inv.RespondedAt,
	}
	if withToken {
		resp.Token = inv.Token
	}
	return resp
}

func ToInvitationResponses(invs []model.Invitation, withToken bool) []InvitationResponse {
	out := make([]InvitationResponse, len(invs))
	for i := range invs {
		out[i] = ToInvitationResponse(&invs[i], withToken)
	}
	return out
}
