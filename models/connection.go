package models

import (
	"time"
)

// Credentials holds the HubSpot token set issued for a connection.
// This is the payload the credentials endpoint returns to clients; the
// widget treats it as opaque.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	HubDomain    string `json:"hub_domain,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// IsExpiringWithin reports whether the access token expires within d of now.
func (c *Credentials) IsExpiringWithin(d time.Duration) bool {
	return time.Unix(c.ExpiresAt, 0).Add(-d).Before(time.Now())
}

// Connection represents a stored HubSpot connection for a user/org pair.
type Connection struct {
	ID        int       `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	OrgID     string    `json:"org_id" db:"org_id"`
	Credentials
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConnectionForm represents form data identifying a connection
type ConnectionForm struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// Validate validates the connection form data
func (f *ConnectionForm) Validate() []string {
	var errors []string

	if f.UserID == "" {
		errors = append(errors, "user_id is required")
	}
	if len(f.UserID) > 255 {
		errors = append(errors, "user_id must be less than 255 characters")
	}
	if f.OrgID == "" {
		errors = append(errors, "org_id is required")
	}
	if len(f.OrgID) > 255 {
		errors = append(errors, "org_id must be less than 255 characters")
	}

	return errors
}

// CredentialsForm represents the JSON-serialized credentials a client sends
// back when requesting items.
type CredentialsForm struct {
	Credentials string `json:"credentials"`
}

// Validate validates the credentials form data
func (f *CredentialsForm) Validate() []string {
	var errors []string

	if f.Credentials == "" {
		errors = append(errors, "credentials is required")
	}

	return errors
}
