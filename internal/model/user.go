package model

import "time"

// User is a user profile. The password hash is kept out of this type and only
// read by the identity package.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	CurrentHouseID *string   `json:"current_house_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HouseID returns the current house id, or "" when the user has no house.
func (u *User) HouseID() string {
	if u == nil || u.CurrentHouseID == nil {
		return ""
	}
	return *u.CurrentHouseID
}
