package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SREYASABU/integration-platform/models"
)

// ErrConnectionNotFound is returned when no stored connection matches.
var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionRepository interface defines connection database operations
type ConnectionRepository interface {
	Get(userID, orgID string) (*models.Connection, error)
	GetFirst() (*models.Connection, error)
	GetAll() ([]models.Connection, error)
	Upsert(conn *models.Connection) error
	Delete(userID, orgID string) error
	Count() (int, error)
}

// connectionRepository implements ConnectionRepository interface
type connectionRepository struct {
	db *sql.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, user_id, org_id, access_token, refresh_token, expires_at, hub_domain, scope, created_at, updated_at`

func scanConnection(row interface{ Scan(...interface{}) error }) (*models.Connection, error) {
	var conn models.Connection
	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.OrgID,
		&conn.AccessToken,
		&conn.RefreshToken,
		&conn.ExpiresAt,
		&conn.HubDomain,
		&conn.Scope,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Get retrieves the connection for a user/org pair
func (r *connectionRepository) Get(userID, orgID string) (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = ? AND org_id = ?
	`

	conn, err := scanConnection(r.db.QueryRow(query, userID, orgID))
	if err == sql.ErrNoRows {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return conn, nil
}

// GetFirst retrieves the earliest stored connection
func (r *connectionRepository) GetFirst() (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		ORDER BY id ASC
		LIMIT 1
	`

	conn, err := scanConnection(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get first connection: %w", err)
	}

	return conn, nil
}

// GetAll retrieves all stored connections
func (r *connectionRepository) GetAll() ([]models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var conns []models.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, *conn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return conns, nil
}

// Upsert inserts the connection or replaces the token set of an existing one
func (r *connectionRepository) Upsert(conn *models.Connection) error {
	query := `
		INSERT INTO connections (user_id, org_id, access_token, refresh_token, expires_at, hub_domain, scope)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, org_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			hub_domain = excluded.hub_domain,
			scope = excluded.scope,
			updated_at = CURRENT_TIMESTAMP
	`

	result, err := r.db.Exec(
		query,
		conn.UserID,
		conn.OrgID,
		conn.AccessToken,
		conn.RefreshToken,
		conn.ExpiresAt,
		conn.HubDomain,
		conn.Scope,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil && conn.ID == 0 {
		conn.ID = int(id)
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}
	conn.UpdatedAt = time.Now()

	return nil
}

// Delete removes the connection for a user/org pair
func (r *connectionRepository) Delete(userID, orgID string) error {
	result, err := r.db.Exec("DELETE FROM connections WHERE user_id = ? AND org_id = ?", userID, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrConnectionNotFound
	}

	return nil
}

// Count returns the number of stored connections
func (r *connectionRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM connections").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count connections: %w", err)
	}
	return count, nil
}
