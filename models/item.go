package models

// IntegrationItem is a normalized record for a third-party CRM object.
// ID is prefixed with the object type ("contact:123") so items from
// different endpoints never collide.
type IntegrationItem struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Type       string                 `json:"type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}
