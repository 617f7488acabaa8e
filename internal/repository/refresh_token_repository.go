package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/lumenblog/auth-service/internal/domain"
)

// refreshTokenRepository implements RefreshTokenRepository interface
type refreshTokenRepository struct {
	q Queryer
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(q Queryer) RefreshTokenRepository {
	return &refreshTokenRepository{q: q}
}

// Create inserts a new active refresh token record. The record's ID is the
// token's jti and must be set by the caller.
func (r *refreshTokenRepository) Create(ctx context.Context, record *domain.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, ip_address, user_agent, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Token,
		record.IPAddress,
		record.UserAgent,
		record.IssuedAt,
		record.ExpiresAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("refresh token with jti %s already exists: %w", record.ID, ErrDuplicateJTI)
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

// GetActive fetches the record matching jti and the exact token string with
// revoked_at still null. Unknown jti, token mismatch and revoked records are
// indistinguishable by design and all return ErrNotFound.
func (r *refreshTokenRepository) GetActive(ctx context.Context, jti, token string) (*domain.RefreshTokenRecord, error) {
	query := `
		SELECT id, user_id, token, ip_address, user_agent, issued_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE id = $1 AND token = $2 AND revoked_at IS NULL
	`

	record := &domain.RefreshTokenRecord{}
	var ipAddress, userAgent sql.NullString
	var revokedAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, jti, token).Scan(
		&record.ID,
		&record.UserID,
		&record.Token,
		&ipAddress,
		&userAgent,
		&record.IssuedAt,
		&record.ExpiresAt,
		&revokedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active refresh token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if ipAddress.Valid {
		record.IPAddress = &ipAddress.String
	}
	if userAgent.Valid {
		record.UserAgent = &userAgent.String
	}
	if revokedAt.Valid {
		record.RevokedAt = &revokedAt.Time
	}

	return record, nil
}

// Revoke marks a record revoked and stamps it with the revoking request's
// client metadata. The WHERE revoked_at IS NULL condition makes the
// transition atomic: of two concurrent revocations exactly one observes a
// row, the other gets ErrNotFound.
func (r *refreshTokenRepository) Revoke(ctx context.Context, jti string, meta domain.ClientMeta, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2, ip_address = $3, user_agent = $4
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, jti, at, meta.IPAddress, meta.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("active refresh token with jti %s not found: %w", jti, ErrNotFound)
	}

	return nil
}
