package models

import "time"

// Session is one logged-in browser session. It snapshots the account so the
// current user can be served without touching the registry.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Account   Account   `json:"account"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
