package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/SREYASABU/integration-platform/models"
)

// HubSpot endpoint defaults.
const (
	DefaultAuthURL  = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL = "https://api.hubapi.com/oauth/v1/token"
	DefaultAPIBase  = "https://api.hubapi.com"
)

// objectPageLimit caps how many records are pulled per CRM object type.
const objectPageLimit = 50

// HubSpotConfig holds HubSpot OAuth app configuration
type HubSpotConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// AuthURL, TokenURL and APIBase default to the real HubSpot endpoints
	// and exist so tests can point the provider at a local server.
	AuthURL  string
	TokenURL string
	APIBase  string

	// HTTPClient is used for token and CRM requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// HubSpotProvider implements the Provider and ItemSource interfaces for HubSpot
type HubSpotProvider struct {
	config  oauth2.Config
	apiBase string
	client  *http.Client
}

// NewHubSpotProvider creates a new HubSpot provider with the given configuration
func NewHubSpotProvider(cfg HubSpotConfig) (*HubSpotProvider, error) {
	// Validate required configuration
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURI == "" {
		return nil, errors.New("redirect URI is required")
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: cfg.Scopes,
	}

	return &HubSpotProvider{
		config:  conf,
		apiBase: apiBase,
		client:  client,
	}, nil
}

// AuthCodeURL returns the HubSpot authorization URL for the given state
func (p *HubSpotProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange exchanges an authorization code for a token set
func (p *HubSpotProvider) Exchange(ctx context.Context, code string) (*models.Credentials, error) {
	token, err := p.config.Exchange(p.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return tokenToCredentials(token, nil), nil
}

// Refresh obtains a fresh access token using the stored refresh token.
// HubSpot rotates refresh tokens on some plans; the prior one is kept when
// the response omits a new one.
func (p *HubSpotProvider) Refresh(ctx context.Context, creds *models.Credentials) (*models.Credentials, error) {
	if creds.RefreshToken == "" {
		return nil, errors.New("no refresh token available")
	}

	src := p.config.TokenSource(p.oauthContext(ctx), &oauth2.Token{
		RefreshToken: creds.RefreshToken,
	})

	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return tokenToCredentials(token, creds), nil
}

// oauthContext makes the oauth2 package use the provider's HTTP client
func (p *HubSpotProvider) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// tokenToCredentials maps an oauth2 token onto the stored credential shape.
// prior, when non-nil, supplies values the token response omitted.
func tokenToCredentials(token *oauth2.Token, prior *models.Credentials) *models.Credentials {
	creds := &models.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}

	if hubDomain, ok := token.Extra("hub_domain").(string); ok {
		creds.HubDomain = hubDomain
	}
	if scope, ok := token.Extra("scope").(string); ok {
		creds.Scope = scope
	}

	if prior != nil {
		if creds.RefreshToken == "" {
			creds.RefreshToken = prior.RefreshToken
		}
		if creds.HubDomain == "" {
			creds.HubDomain = prior.HubDomain
		}
		if creds.Scope == "" {
			creds.Scope = prior.Scope
		}
	}

	return creds
}

// crmObject describes one CRM object type to pull and how to title its records
type crmObject struct {
	name       string
	itemType   string
	properties []string
	title      func(id string, props map[string]string) string
}

var crmObjects = []crmObject{
	{
		name:       "contacts",
		itemType:   "contact",
		properties: []string{"email", "firstname", "lastname", "phone"},
		title: func(id string, props map[string]string) string {
			if props["email"] != "" {
				return props["email"]
			}
			name := props["firstname"]
			if props["lastname"] != "" {
				if name != "" {
					name += " "
				}
				name += props["lastname"]
			}
			if name != "" {
				return name
			}
			return "Contact " + id
		},
	},
	{
		name:       "companies",
		itemType:   "company",
		properties: []string{"name", "domain", "phone"},
		title: func(id string, props map[string]string) string {
			if props["name"] != "" {
				return props["name"]
			}
			if props["domain"] != "" {
				return props["domain"]
			}
			return "Company " + id
		},
	},
	{
		name:       "deals",
		itemType:   "deal",
		properties: []string{"dealname", "amount", "dealstage", "closedate"},
		title: func(id string, props map[string]string) string {
			if props["dealname"] != "" {
				return props["dealname"]
			}
			return "Deal " + id
		},
	},
}

// crmListResponse mirrors the CRM v3 object list payload
type crmListResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
}

// ListItems queries the CRM object endpoints and returns normalized items.
// A failure on one object type is non-fatal; remaining types are still
// fetched, matching the endpoint's all-results-we-could-get semantics.
func (p *HubSpotProvider) ListItems(ctx context.Context, accessToken string) ([]models.IntegrationItem, error) {
	items := []models.IntegrationItem{}
	var failures int

	for _, obj := range crmObjects {
		records, err := p.fetchObjects(ctx, accessToken, obj)
		if err != nil {
			log.Printf("Error fetching %s: %v", obj.name, err)
			failures++
			continue
		}
		items = append(items, records...)
	}

	// All object types failing means the token is bad or HubSpot is down;
	// partial failures are swallowed above.
	if failures == len(crmObjects) {
		return nil, errors.New("failed to fetch any CRM objects")
	}

	return items, nil
}

// fetchObjects lists one CRM object type and maps its records to items
func (p *HubSpotProvider) fetchObjects(ctx context.Context, accessToken string, obj crmObject) ([]models.IntegrationItem, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/%s", p.apiBase, obj.name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(objectPageLimit))
	for _, prop := range obj.properties {
		query.Add("properties", prop)
	}
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload crmListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.IntegrationItem, 0, len(payload.Results))
	for _, record := range payload.Results {
		parameters := map[string]interface{}{
			"hubspot_id": record.ID,
		}
		for _, prop := range obj.properties {
			parameters[prop] = record.Properties[prop]
		}

		items = append(items, models.IntegrationItem{
			ID:         obj.itemType + ":" + record.ID,
			Title:      obj.title(record.ID, record.Properties),
			Type:       obj.itemType,
			Parameters: parameters,
		})
	}

	return items, nil
}
