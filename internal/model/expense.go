package model

import "time"

type Expense struct {
	ID          string    `json:"id"`
	HouseID     string    `json:"house_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	PaidBy      string    `json:"paid_by"`
	Date        time.Time `json:"date"`
	// SplitWith never contains PaidBy.
	SplitWith []string `json:"split_with"`
}
