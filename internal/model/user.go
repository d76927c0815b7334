package model

import "time"

type Role string

const (
	RoleFree  Role = "free"
	RolePaid  Role = "paid"
	RoleSuper Role = "super"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFree, RolePaid, RoleSuper:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Tokens    int64     `json:"tokens"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsSuper() bool {
	return u.Role == RoleSuper
}

// IsFreeTier reports whether the user is subject to the free-tier word limit
// and cooldown.
func (u *User) IsFreeTier() bool {
	return u.Role == RoleFree
}
