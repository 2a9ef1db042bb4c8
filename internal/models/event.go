package models

import "time"

// Event represents a loggable action in an account's activity trail.
type Event struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Type      string    `json:"type"`  // e.g., "roadmap.generated", "synthesis.failed"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
