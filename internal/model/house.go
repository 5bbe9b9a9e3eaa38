package model

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type House struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Rules       *string   `json:"rules"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Membership struct {
	HouseID  string    `json:"house_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Housemate is a profile joined with its membership in one house. Current is
// false for members whose profile no longer points at that house.
type Housemate struct {
	User
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	Current  bool      `json:"current"`
}
