package provider

import (
	"context"

	"github.com/SREYASABU/integration-platform/models"
)

// Provider interface abstracts OAuth provider operations
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.Credentials, error)
	Refresh(ctx context.Context, creds *models.Credentials) (*models.Credentials, error)
}

// ItemSource lists third-party objects as normalized integration items
type ItemSource interface {
	ListItems(ctx context.Context, accessToken string) ([]models.IntegrationItem, error)
}
