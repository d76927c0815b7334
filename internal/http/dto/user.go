package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
}

type UserResponse struct {
	ID        int64      `json:"id,string"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Tokens    int64      `json:"tokens"`
	Suspended bool       `json:"suspended"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Tokens:    u.Tokens,
		Suspended: u.Suspended,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponses(users []model.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

type SetRoleRequest struct {
	Role model.Role `json:"role" binding:"required,oneof=free paid super"`
}

type SetSuspendedRequest struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

type StatsResponse struct {
	EditedTexts int64 `json:"edited_texts"`
	UsedTokens  int64 `json:"used_tokens"`
	Corrections int64 `json:"corrections"`
}

func ToStatsResponse(s *model.UserStats) StatsResponse {
	return StatsResponse{
		EditedTexts: s.EditedTexts,
		UsedTokens:  s.UsedTokens,
		Corrections: s.Corrections,
	}
}
