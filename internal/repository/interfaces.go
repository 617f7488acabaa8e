package repository

import (
	"context"
	"time"

	"github.com/lumenblog/auth-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	ClearPassword(ctx context.Context, userID string) error
}

// RefreshTokenRepository defines the persistence side of the refresh token
// state machine. Records move one way from Active (revoked_at null) to
// Revoked and are never deleted.
type RefreshTokenRepository interface {
	Create(ctx context.Context, record *domain.RefreshTokenRecord) error

	// GetActive fetches the record matching jti and the exact token string
	// that has not been revoked. Any mismatch returns ErrNotFound.
	GetActive(ctx context.Context, jti, token string) (*domain.RefreshTokenRecord, error)

	// Revoke performs a single conditional update so two concurrent
	// revocations of the same record cannot both succeed. A record that is
	// already revoked returns ErrNotFound.
	Revoke(ctx context.Context, jti string, meta domain.ClientMeta, at time.Time) error
}

// OAuthConnectionRepository defines methods for OAuth identity links
type OAuthConnectionRepository interface {
	Create(ctx context.Context, conn *domain.OAuthConnection) error
	GetByProviderUserID(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthConnection, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthConnection, error)
	Delete(ctx context.Context, connectionID string) error
}

// Store bundles the repositories and the transaction boundary. WithinTx runs
// fn against a Store whose repositories share one database transaction; the
// transaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	OAuthConnections() OAuthConnectionRepository

	WithinTx(ctx context.Context, fn func(Store) error) error
}
