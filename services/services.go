package services

import (
	"time"

	"github.com/SREYASABU/integration-platform/provider"
	"github.com/SREYASABU/integration-platform/repositories"
)

// Services holds all service instances
type Services struct {
	Integration IntegrationService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, hubspot *provider.HubSpotProvider, stateTTL time.Duration) *Services {
	return &Services{
		Integration: NewIntegrationService(repos.Connections, repos.States, hubspot, hubspot, stateTTL),
	}
}
