package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SREYASABU/integration-platform/models"
	"github.com/SREYASABU/integration-platform/provider"
	"github.com/SREYASABU/integration-platform/repositories"
)

// refreshLeeway is how close to expiry an access token may get before a
// credential read triggers a refresh.
const refreshLeeway = 60 * time.Second

// ErrNoConnection is returned when item listing is requested but nothing
// has been connected yet.
var ErrNoConnection = errors.New("no stored connection")

// IntegrationService interface defines the integration business logic
type IntegrationService interface {
	BeginAuthorize(ctx context.Context, form *models.ConnectionForm) (string, error)
	CompleteAuthorize(ctx context.Context, stateToken, code string) (*models.Connection, error)
	GetCredentials(ctx context.Context, form *models.ConnectionForm) (*models.Credentials, error)
	ListItems(ctx context.Context, creds *models.Credentials) ([]models.IntegrationItem, error)
	ListItemsForFirstConnection(ctx context.Context) ([]models.IntegrationItem, error)
	SweepExpiredStates() (int64, error)
}

// integrationService implements IntegrationService interface
type integrationService struct {
	connections repositories.ConnectionRepository
	states      repositories.StateRepository
	oauth       provider.Provider
	items       provider.ItemSource
	stateTTL    time.Duration
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	connections repositories.ConnectionRepository,
	states repositories.StateRepository,
	oauth provider.Provider,
	items provider.ItemSource,
	stateTTL time.Duration,
) IntegrationService {
	if stateTTL <= 0 {
		stateTTL = 5 * time.Minute
	}
	return &integrationService{
		connections: connections,
		states:      states,
		oauth:       oauth,
		items:       items,
		stateTTL:    stateTTL,
	}
}

// BeginAuthorize mints a state token for the user/org pair and returns the
// provider authorization URL carrying it.
func (s *integrationService) BeginAuthorize(ctx context.Context, form *models.ConnectionForm) (string, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return "", fmt.Errorf("validation failed: %s", strings.Join(errs, ", "))
	}

	state := &models.OAuthState{
		State:     uuid.NewString(),
		UserID:    form.UserID,
		OrgID:     form.OrgID,
		ExpiresAt: time.Now().Add(s.stateTTL),
	}

	if err := s.states.Create(state); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.oauth.AuthCodeURL(state.State), nil
}

// CompleteAuthorize handles the provider callback: the state token is
// consumed, the code exchanged, and the resulting token set persisted for
// the user/org pair the state was minted for.
func (s *integrationService) CompleteAuthorize(ctx context.Context, stateToken, code string) (*models.Connection, error) {
	if stateToken == "" {
		return nil, errors.New("missing state parameter")
	}
	if code == "" {
		return nil, errors.New("missing code parameter")
	}

	state, err := s.states.Consume(stateToken)
	if err != nil {
		if errors.Is(err, repositories.ErrStateNotFound) {
			return nil, errors.New("invalid or expired state parameter")
		}
		return nil, fmt.Errorf("failed to verify state: %w", err)
	}

	creds, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	conn := &models.Connection{
		UserID:      state.UserID,
		OrgID:       state.OrgID,
		Credentials: *creds,
	}

	if err := s.connections.Upsert(conn); err != nil {
		return nil, fmt.Errorf("failed to persist connection: %w", err)
	}

	return conn, nil
}

// GetCredentials returns the stored credentials for a user/org pair,
// refreshing them first when the access token is within a minute of expiry.
// Returns (nil, nil) when nothing is stored: not-yet-connected is an answer,
// not an error.
func (s *integrationService) GetCredentials(ctx context.Context, form *models.ConnectionForm) (*models.Credentials, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errs, ", "))
	}

	conn, err := s.connections.Get(form.UserID, form.OrgID)
	if err != nil {
		if errors.Is(err, repositories.ErrConnectionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}

	if err := s.refreshIfNeeded(ctx, conn); err != nil {
		return nil, err
	}

	return &conn.Credentials, nil
}

// refreshIfNeeded refreshes and persists the connection's token set when it
// is about to expire.
func (s *integrationService) refreshIfNeeded(ctx context.Context, conn *models.Connection) error {
	if !conn.IsExpiringWithin(refreshLeeway) {
		return nil
	}

	refreshed, err := s.oauth.Refresh(ctx, &conn.Credentials)
	if err != nil {
		return fmt.Errorf("failed to refresh credentials: %w", err)
	}

	conn.Credentials = *refreshed
	if err := s.connections.Upsert(conn); err != nil {
		return fmt.Errorf("failed to persist refreshed credentials: %w", err)
	}

	return nil
}

// ListItems fetches CRM items using the supplied credentials
func (s *integrationService) ListItems(ctx context.Context, creds *models.Credentials) ([]models.IntegrationItem, error) {
	if creds == nil || creds.AccessToken == "" {
		return nil, errors.New("credentials are required")
	}

	items, err := s.items.ListItems(ctx, creds.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// ListItemsForFirstConnection serves the credential-less item listing: the
// earliest stored connection is used, refreshed as needed.
func (s *integrationService) ListItemsForFirstConnection(ctx context.Context) ([]models.IntegrationItem, error) {
	conn, err := s.connections.GetFirst()
	if err != nil {
		if errors.Is(err, repositories.ErrConnectionNotFound) {
			return nil, ErrNoConnection
		}
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}

	if err := s.refreshIfNeeded(ctx, conn); err != nil {
		return nil, err
	}

	return s.ListItems(ctx, &conn.Credentials)
}

// SweepExpiredStates removes expired OAuth state tokens
func (s *integrationService) SweepExpiredStates() (int64, error) {
	return s.states.DeleteExpired()
}
