package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SREYASABU/integration-platform/models"
)

// BackendClient is what the widget needs from the integration backend
type BackendClient interface {
	Authorize(ctx context.Context, userID, orgID string) (string, error)
	ExchangeCredentials(ctx context.Context, userID, orgID string) (json.RawMessage, error)
	FetchItems(ctx context.Context, credentials json.RawMessage) ([]models.IntegrationItem, error)
}

// BackendError is a failure the backend reported in a structured response
type BackendError struct {
	StatusCode int
	Detail     string
}

// Error returns the backend-supplied failure detail
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Detail)
}

// Client is an HTTP BackendClient against the integration service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. httpClient may be nil, in which case
// http.DefaultClient is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Authorize requests an authorization URL for the user/org pair
func (c *Client) Authorize(ctx context.Context, userID, orgID string) (string, error) {
	form := url.Values{}
	form.Set("user_id", userID)
	form.Set("org_id", orgID)

	body, err := c.postForm(ctx, "/integrations/hubspot/authorize", form)
	if err != nil {
		return "", err
	}

	authURL := strings.TrimSpace(string(body))
	// Tolerate backends that JSON-encode the bare URL string.
	if strings.HasPrefix(authURL, `"`) {
		if unquoted, err := strconv.Unquote(authURL); err == nil {
			authURL = unquoted
		}
	}

	if authURL == "" {
		return "", &BackendError{StatusCode: http.StatusOK, Detail: "empty authorization URL"}
	}

	return authURL, nil
}

// ExchangeCredentials asks the backend for the credentials the last
// authorization round produced. The raw body is returned untouched; the
// widget decides what counts as empty.
func (c *Client) ExchangeCredentials(ctx context.Context, userID, orgID string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("user_id", userID)
	form.Set("org_id", orgID)

	body, err := c.postForm(ctx, "/integrations/hubspot/credentials", form)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}

// FetchItems loads items through the backend proxy using the given
// serialized credentials
func (c *Client) FetchItems(ctx context.Context, credentials json.RawMessage) ([]models.IntegrationItem, error) {
	form := url.Values{}
	form.Set("credentials", string(credentials))

	body, err := c.postForm(ctx, "/integrations/hubspot/get_hubspot_items", form)
	if err != nil {
		return nil, err
	}

	var items []models.IntegrationItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return items, nil
}

// postForm sends a form-encoded POST and returns the response body.
// Non-2xx responses become a BackendError carrying the structured detail
// when one is present, the raw body otherwise.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newBackendError(resp.StatusCode, body)
	}

	return body, nil
}

func newBackendError(statusCode int, body []byte) *BackendError {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &BackendError{StatusCode: statusCode, Detail: payload.Detail}
	}
	return &BackendError{StatusCode: statusCode, Detail: strings.TrimSpace(string(body))}
}
