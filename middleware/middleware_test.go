package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SREYASABU/integration-platform/userctx"
)

func TestIdentify(t *testing.T) {
	var seenUser, seenOrg string
	handler := Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = userctx.GetUserID(r.Context())
		seenOrg = userctx.GetOrgID(r.Context())
	}))

	form := url.Values{"user_id": {"u1"}, "org_id": {"o1"}}
	req := httptest.NewRequest(http.MethodPost, "/integrations/hubspot/authorize", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u1", seenUser)
	assert.Equal(t, "o1", seenOrg)
}

func TestIdentify_AnonymousWithoutForm(t *testing.T) {
	var seenUser string
	handler := Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = userctx.GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "anonymous", seenUser)
}

func TestCaptureFormData_RedactsCredentials(t *testing.T) {
	form := url.Values{
		"user_id":     {"u1"},
		"credentials": {`{"access_token":"secret"}`},
	}
	req := httptest.NewRequest(http.MethodPost, "/integrations/hubspot/get_hubspot_items", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	captured := captureFormData(req)

	assert.Contains(t, captured, `"user_id":"u1"`)
	assert.Contains(t, captured, `"credentials":"[redacted]"`)
	assert.NotContains(t, captured, "secret")
}

func TestGetIPAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", getIPAddress(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getIPAddress(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getIPAddress(req))
}
