package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lumenblog/auth-service/internal/domain"
)

// oauthConnectionRepository implements OAuthConnectionRepository interface
type oauthConnectionRepository struct {
	q Queryer
}

// NewOAuthConnectionRepository creates a new OAuth connection repository
func NewOAuthConnectionRepository(q Queryer) OAuthConnectionRepository {
	return &oauthConnectionRepository{q: q}
}

// Create creates a new OAuth connection. The unique constraint on
// (provider, provider_user_id) is the final backstop against two concurrent
// first-time logins for the same external identity.
func (r *oauthConnectionRepository) Create(ctx context.Context, conn *domain.OAuthConnection) error {
	query := `
		INSERT INTO oauth_connections (id, user_id, provider, provider_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}

	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		conn.ID,
		conn.UserID,
		conn.Provider,
		conn.ProviderUserID,
		conn.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("oauth connection already exists: %w", ErrDuplicateConnection)
		}
		return fmt.Errorf("failed to create oauth connection: %w", err)
	}

	return nil
}

// GetByProviderUserID retrieves an OAuth connection by provider and the
// provider-assigned subject id
func (r *oauthConnectionRepository) GetByProviderUserID(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthConnection, error) {
	query := `
		SELECT id, user_id, provider, provider_user_id, created_at
		FROM oauth_connections
		WHERE provider = $1 AND provider_user_id = $2
	`

	conn := &domain.OAuthConnection{}

	err := r.q.QueryRowContext(ctx, query, provider, providerUserID).Scan(
		&conn.ID,
		&conn.UserID,
		&conn.Provider,
		&conn.ProviderUserID,
		&conn.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("oauth connection not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get oauth connection: %w", err)
	}

	return conn, nil
}

// GetByUserID retrieves all OAuth connections for a user
func (r *oauthConnectionRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthConnection, error) {
	query := `
		SELECT id, user_id, provider, provider_user_id, created_at
		FROM oauth_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth connections by user id: %w", err)
	}
	defer rows.Close()

	var conns []*domain.OAuthConnection
	for rows.Next() {
		conn := &domain.OAuthConnection{}

		err := rows.Scan(
			&conn.ID,
			&conn.UserID,
			&conn.Provider,
			&conn.ProviderUserID,
			&conn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan oauth connection: %w", err)
		}

		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate oauth connections: %w", err)
	}

	return conns, nil
}

// Delete deletes an OAuth connection by ID
func (r *oauthConnectionRepository) Delete(ctx context.Context, connectionID string) error {
	query := `DELETE FROM oauth_connections WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, connectionID)
	if err != nil {
		return fmt.Errorf("failed to delete oauth connection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("oauth connection with id %s not found: %w", connectionID, ErrNotFound)
	}

	return nil
}
