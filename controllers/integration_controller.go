package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SREYASABU/integration-platform/models"
	"github.com/SREYASABU/integration-platform/services"
)

// IntegrationController handles the HubSpot integration endpoints
type IntegrationController struct {
	services        *services.Services
	frontendBaseURL string
}

// NewIntegrationController creates a new integration controller
func NewIntegrationController(services *services.Services, frontendBaseURL string) *IntegrationController {
	return &IntegrationController{
		services:        services,
		frontendBaseURL: frontendBaseURL,
	}
}

// connectionFormFromRequest parses the user/org identifying form fields
func connectionFormFromRequest(r *http.Request) (*models.ConnectionForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	return &models.ConnectionForm{
		UserID: strings.TrimSpace(r.FormValue("user_id")),
		OrgID:  strings.TrimSpace(r.FormValue("org_id")),
	}, nil
}

// Authorize handles POST /integrations/hubspot/authorize.
// The response body is the plain authorization URL the client should open.
func (c *IntegrationController) Authorize(w http.ResponseWriter, r *http.Request) {
	form, err := connectionFormFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := form.Validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(errs, ", "))
		return
	}

	authURL, err := c.services.Integration.BeginAuthorize(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start authorization: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, authURL)
}

// AuthorizeRedirect handles GET /integrations/hubspot/authorize, the
// minimal variant where a browsing context navigates here directly. The
// user/org come from the query string when present and fall back to the
// defaults the credential-less item listing serves.
func (c *IntegrationController) AuthorizeRedirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	form := &models.ConnectionForm{
		UserID: strings.TrimSpace(query.Get("user_id")),
		OrgID:  strings.TrimSpace(query.Get("org_id")),
	}
	if form.UserID == "" {
		form.UserID = "default"
	}
	if form.OrgID == "" {
		form.OrgID = "default"
	}

	authURL, err := c.services.Integration.BeginAuthorize(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start authorization: "+err.Error())
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// OAuthCallback handles GET /integrations/hubspot/oauth2callback, the
// redirect target HubSpot sends the user back to after consenting.
func (c *IntegrationController) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		writeError(w, http.StatusBadRequest, "hubspot authorization failed: "+providerErr)
		return
	}

	_, err := c.services.Integration.CompleteAuthorize(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Send the user's popup window back to the frontend; the widget polls
	// the credentials endpoint once it observes the window closing.
	http.Redirect(w, r, c.frontendBaseURL+"/?integrations=hubspot_connected", http.StatusTemporaryRedirect)
}

// Credentials handles POST /integrations/hubspot/credentials.
// When nothing is stored for the user/org pair the body is the JSON
// literal null, which clients read as "not connected yet".
func (c *IntegrationController) Credentials(w http.ResponseWriter, r *http.Request) {
	form, err := connectionFormFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := form.Validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(errs, ", "))
		return
	}

	creds, err := c.services.Integration.GetCredentials(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, creds)
}

// LoadItems handles POST /integrations/hubspot/get_hubspot_items.
// The credentials form field carries the JSON credentials the client was
// handed by the credentials endpoint.
func (c *IntegrationController) LoadItems(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	raw := r.FormValue("credentials")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "credentials is required")
		return
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials payload: "+err.Error())
		return
	}

	items, err := c.services.Integration.ListItems(r.Context(), &creds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Items handles GET /integrations/hubspot/items, the credential-less
// variant serving the earliest stored connection.
func (c *IntegrationController) Items(w http.ResponseWriter, r *http.Request) {
	items, err := c.services.Integration.ListItemsForFirstConnection(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoConnection) {
			writeError(w, http.StatusNotFound, "no hubspot connection stored")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}
