package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SREYASABU/integration-platform/models"
)

// ErrStateNotFound is returned when an OAuth state token is unknown,
// already consumed, or expired.
var ErrStateNotFound = errors.New("oauth state not found")

// StateRepository interface defines OAuth state token operations
type StateRepository interface {
	Create(state *models.OAuthState) error
	Consume(state string) (*models.OAuthState, error)
	DeleteExpired() (int64, error)
}

// stateRepository implements StateRepository interface
type stateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new OAuth state repository
func NewStateRepository(db *sql.DB) StateRepository {
	return &stateRepository{db: db}
}

// Create stores a new state token
func (r *stateRepository) Create(state *models.OAuthState) error {
	query := `
		INSERT INTO oauth_states (state, user_id, org_id, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, state.State, state.UserID, state.OrgID, state.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create oauth state: %w", err)
	}

	return nil
}

// Consume retrieves a state token and deletes it so it cannot be replayed.
// Expired tokens are treated as not found.
func (r *stateRepository) Consume(stateToken string) (*models.OAuthState, error) {
	query := `
		SELECT state, user_id, org_id, expires_at, created_at
		FROM oauth_states
		WHERE state = ?
	`

	var state models.OAuthState
	err := r.db.QueryRow(query, stateToken).Scan(
		&state.State,
		&state.UserID,
		&state.OrgID,
		&state.ExpiresAt,
		&state.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth state: %w", err)
	}

	if _, err := r.db.Exec("DELETE FROM oauth_states WHERE state = ?", stateToken); err != nil {
		return nil, fmt.Errorf("failed to consume oauth state: %w", err)
	}

	if state.Expired() {
		return nil, ErrStateNotFound
	}

	return &state, nil
}

// DeleteExpired removes all expired state tokens
func (r *stateRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM oauth_states WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired oauth states: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
