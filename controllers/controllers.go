package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/SREYASABU/integration-platform/services"
)

// errorResponse is the JSON error payload shape clients parse
type errorResponse struct {
	Detail string `json:"detail"`
}

// writeJSON renders data as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to send the client.
		return
	}
}

// writeError renders an error detail as a JSON response
func writeError(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, errorResponse{Detail: detail})
}

// Controllers holds all controller instances
type Controllers struct {
	Integration *IntegrationController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, frontendBaseURL string) *Controllers {
	return &Controllers{
		Integration: NewIntegrationController(services, frontendBaseURL),
	}
}
