package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, populated from environment variables.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"integration_platform.db"`

	// Frontend base URL the OAuth callback redirects back to.
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	// BackendBaseURL is used by the connect subcommand to reach a running server.
	BackendBaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8080"`

	HubSpot HubSpotConfig

	// How long a minted OAuth state token stays valid.
	StateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"5m"`
}

// HubSpotConfig holds the HubSpot OAuth app settings.
type HubSpotConfig struct {
	ClientID     string   `env:"HUBSPOT_CLIENT_ID"`
	ClientSecret string   `env:"HUBSPOT_CLIENT_SECRET"`
	RedirectURI  string   `env:"HUBSPOT_REDIRECT_URI" envDefault:"http://localhost:8080/integrations/hubspot/oauth2callback"`
	Scopes       []string `env:"HUBSPOT_SCOPES" envSeparator:"," envDefault:"crm.objects.contacts.read,crm.objects.companies.read,crm.objects.deals.read"`
}

// Load reads a .env file if present and parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the settings required to serve OAuth are present.
func (c *Config) Validate() error {
	if c.HubSpot.ClientID == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_ID is required")
	}
	if c.HubSpot.ClientSecret == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_SECRET is required")
	}
	if c.HubSpot.RedirectURI == "" {
		return fmt.Errorf("HUBSPOT_REDIRECT_URI is required")
	}
	return nil
}
