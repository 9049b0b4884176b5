package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/SREYASABU/integration-platform/models"
	"github.com/SREYASABU/integration-platform/repositories"
	"github.com/SREYASABU/integration-platform/userctx"
)

// AuditLogger middleware logs all POST/PUT/DELETE requests
func AuditLogger(auditRepo repositories.AuditRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only log mutation operations
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				entry := &models.AuditLogEntry{
					UserID:    userctx.GetUserID(r.Context()),
					Method:    r.Method,
					Path:      r.URL.Path,
					UserAgent: r.UserAgent(),
					IPAddress: getIPAddress(r),
					FormData:  captureFormData(r),
				}

				// Log asynchronously to avoid blocking the request
				go func() {
					if err := auditRepo.Create(entry); err != nil {
						log.Printf("Failed to create audit log: %v", err)
					}
				}()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take first IP if multiple
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// captureFormData captures form data as a JSON string. The credentials
// field carries live tokens and is never written to the audit trail.
func captureFormData(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}

	formMap := make(map[string]interface{})
	for key, values := range r.Form {
		if key == "credentials" {
			formMap[key] = "[redacted]"
			continue
		}
		if len(values) == 1 {
			formMap[key] = values[0]
		} else {
			formMap[key] = values
		}
	}

	jsonData, err := json.Marshal(formMap)
	if err != nil {
		return ""
	}

	return string(jsonData)
}
