// Package chore keeps the house chore register.
package chore

import "github.com/dukerupert/roomshare/internal/model"

// Toggle flips a chore between pending and completed. Any other value is
// treated as pending, so a stored status always toggles to a valid one.
func Toggle(status model.ChoreStatus) model.ChoreStatus {
	if status == model.ChoreCompleted {
		return model.ChorePending
	}
	return model.ChoreCompleted
}

// Valid reports whether status is one of the two stored states.
func Valid(status model.ChoreStatus) bool {
	return status == model.ChorePending || status == model.ChoreCompleted
}
