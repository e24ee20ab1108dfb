package models

import "time"

// Submission is one accepted form payload. ID and CreatedAt are assigned by
// the store on insert and never change afterwards.
type Submission struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}
