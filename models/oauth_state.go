package models

import "time"

// OAuthState is a short-lived token correlating an authorize request with
// the OAuth callback that follows it.
type OAuthState struct {
	State     string    `json:"state" db:"state"`
	UserID    string    `json:"user_id" db:"user_id"`
	OrgID     string    `json:"org_id" db:"org_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the state token is past its TTL.
func (s *OAuthState) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
