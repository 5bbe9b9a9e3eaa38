package model

import "time"

type ChoreStatus string

const (
	ChorePending   ChoreStatus = "pending"
	ChoreCompleted ChoreStatus = "completed"
)

type RotationInterval string

const RotationWeekly RotationInterval = "weekly"

type Chore struct {
	ID          string      `json:"id"`
	HouseID     string      `json:"house_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	AssignedTo  *string     `json:"assigned_to"`
	Status      ChoreStatus `json:"status"`
	DueDate     *time.Time  `json:"due_date"`
	IsRotating  bool        `json:"is_rotating"`
	// RotationInterval is stored but nothing rotates assignments yet.
	RotationInterval *RotationInterval `json:"rotation_interval,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
