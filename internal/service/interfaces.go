package service

import (
	"context"

	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/dto"
)

// AuthService defines the public authentication state machine: sign-up and
// password sign-in, refresh rotation, terminal sign-out, and stateless access
// token validation.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, meta domain.ClientMeta) (*AuthResult, error)
	SignIn(ctx context.Context, req *dto.SignInRequest, meta domain.ClientMeta) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, meta domain.ClientMeta) (*AuthResult, error)
	SignOut(ctx context.Context, refreshToken string, meta domain.ClientMeta) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.AccessTokenClaims, error)
}

// OAuthService defines OAuth sign-in and connection management.
type OAuthService interface {
	SignIn(ctx context.Context, provider domain.Provider, code string, meta domain.ClientMeta) (*AuthResult, error)
	Link(ctx context.Context, userID string, provider domain.Provider, code string) error
	Unlink(ctx context.Context, userID string, provider domain.Provider) error
	RemovePassword(ctx context.Context, userID string) error
}
