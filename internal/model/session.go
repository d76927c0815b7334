package model

import "time"

// Session is an authenticated login issued by the external auth provider.
type Session struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
