package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SREYASABU/integration-platform/models"
)

// SimpleIntegration is the minimal, credential-less integration variant:
// Authorize opens the backend authorize endpoint directly (the backend
// redirects onward to HubSpot) and FetchItems reads the shared item
// listing. There is no connection state and no popup polling.
type SimpleIntegration struct {
	baseURL    string
	opener     PopupOpener
	httpClient *http.Client
}

// NewSimpleIntegration creates a minimal integration against the backend
// at baseURL. httpClient may be nil.
func NewSimpleIntegration(baseURL string, opener PopupOpener, httpClient *http.Client) (*SimpleIntegration, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opener == nil {
		return nil, errors.New("popup opener is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SimpleIntegration{
		baseURL:    strings.TrimRight(baseURL, "/"),
		opener:     opener,
		httpClient: httpClient,
	}, nil
}

// Authorize opens the authorize endpoint in a new browsing context. No
// closure polling follows; the backend handles the rest of the flow.
func (s *SimpleIntegration) Authorize() error {
	_, err := s.opener.Open(s.baseURL + "/integrations/hubspot/authorize")
	if err != nil {
		return fmt.Errorf("failed to open authorization page: %w", err)
	}
	return nil
}

// FetchItems lists items from the credential-less endpoint. A non-success
// status becomes an error whose message is the response body.
func (s *SimpleIntegration) FetchItems(ctx context.Context) ([]models.IntegrationItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/integrations/hubspot/items", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(strings.TrimSpace(string(body)))
	}

	var items []models.IntegrationItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return items, nil
}
