package models

import (
	"encoding/json"
	"testing"
	"time"
)

// Test ConnectionForm validation
func TestConnectionFormValidation(t *testing.T) {
	// Test valid form
	validForm := ConnectionForm{
		UserID: "user-1",
		OrgID:  "org-1",
	}
	errors := validForm.Validate()
	if len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	// Test invalid form
	invalidForm := ConnectionForm{
		UserID: "", // Empty user
		OrgID:  "",
	}
	errors = invalidForm.Validate()
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}

	// Test oversized identifiers
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	oversized := ConnectionForm{
		UserID: string(long),
		OrgID:  string(long),
	}
	errors = oversized.Validate()
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors for oversized form, got: %v", errors)
	}
}

// Test CredentialsForm validation
func TestCredentialsFormValidation(t *testing.T) {
	validForm := CredentialsForm{Credentials: `{"access_token":"abc"}`}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	invalidForm := CredentialsForm{}
	if errors := invalidForm.Validate(); len(errors) != 1 {
		t.Errorf("Expected 1 error for empty form, got: %v", errors)
	}
}

// Test expiry window check
func TestCredentialsIsExpiringWithin(t *testing.T) {
	fresh := Credentials{ExpiresAt: time.Now().Add(10 * time.Minute).Unix()}
	if fresh.IsExpiringWithin(time.Minute) {
		t.Error("Expected token with 10 minutes left not to be expiring within 1 minute")
	}

	closeToExpiry := Credentials{ExpiresAt: time.Now().Add(30 * time.Second).Unix()}
	if !closeToExpiry.IsExpiringWithin(time.Minute) {
		t.Error("Expected token with 30 seconds left to be expiring within 1 minute")
	}

	expired := Credentials{ExpiresAt: time.Now().Add(-time.Hour).Unix()}
	if !expired.IsExpiringWithin(time.Minute) {
		t.Error("Expected expired token to be expiring within any window")
	}
}

// Test that connection JSON flattens credentials alongside identity fields
func TestConnectionJSONShape(t *testing.T) {
	conn := Connection{
		UserID: "u1",
		OrgID:  "o1",
		Credentials: Credentials{
			AccessToken: "tok",
			ExpiresAt:   123,
		},
	}

	data, err := json.Marshal(conn)
	if err != nil {
		t.Fatalf("Failed to marshal connection: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal connection: %v", err)
	}

	if decoded["access_token"] != "tok" {
		t.Errorf("Expected embedded access_token at top level, got: %v", decoded)
	}
	if decoded["user_id"] != "u1" {
		t.Errorf("Expected user_id at top level, got: %v", decoded)
	}
}
