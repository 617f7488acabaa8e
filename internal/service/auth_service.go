package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/dto"
	"github.com/lumenblog/auth-service/internal/repository"
	"github.com/lumenblog/auth-service/internal/utils"
	"go.uber.org/zap"
)

// AuthResult is one access/refresh issuance. The access token travels in the
// response body for bearer reuse; the refresh token is set as an http-only
// cookie by the handler.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  int
	RefreshExpiresIn int
	User             *domain.User
}

// authService implements AuthService
type authService struct {
	store        repository.Store
	jwtManager   *utils.JWTManager
	logger       *zap.Logger
	bcryptCost   int
	queryTimeout time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	store repository.Store,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
	bcryptCost int,
	queryTimeout time.Duration,
) AuthService {
	return &authService{
		store:        store,
		jwtManager:   jwtManager,
		logger:       logger,
		bcryptCost:   bcryptCost,
		queryTimeout: queryTimeout,
	}
}

// Register creates a password account and signs it in.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, meta domain.ClientMeta) (*AuthResult, error) {
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("%w: password must contain uppercase, lowercase and a number", ErrInvalidPassword)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user := &domain.User{
		Handle:       req.Handle,
		Email:        utils.SanitizeEmail(req.Email),
		PasswordHash: &passwordHash,
		DisplayName:  req.DisplayName,
		IsVerified:   false,
	}

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateEmail):
				return ErrEmailTaken
			case errors.Is(err, repository.ErrDuplicateHandle):
				return ErrHandleTaken
			}
			return err
		}

		var issueErr error
		result, issueErr = issueTokenPair(ctx, tx, s.jwtManager, user, meta)
		return issueErr
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("handle", user.Handle),
	)

	return result, nil
}

// SignIn authenticates a user by handle and password and issues a token pair.
func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest, meta domain.ClientMeta) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.store.Users().GetByHandle(ctx, req.Handle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeErr(err)
	}

	// OAuth-only accounts have no password credential; treat as a mismatch.
	if !user.HasPassword() || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var issueErr error
		result, issueErr = issueTokenPair(ctx, tx, s.jwtManager, user, meta)
		return issueErr
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	return result, nil
}

// Refresh rotates a refresh token: the presented token becomes permanently
// unusable and a fresh access/refresh pair is issued. Revoking the old record
// and inserting the new one commit or fail together, so a failed rotation
// never leaves the caller without a valid token.
func (s *authService) Refresh(ctx context.Context, refreshToken string, meta domain.ClientMeta) (*AuthResult, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		record, err := tx.RefreshTokens().GetActive(ctx, claims.JTI, refreshToken)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		// The conditional update is the synchronization point: of two
		// concurrent rotations of the same token only one revokes the row,
		// the loser fails here with ErrInvalidToken.
		if err := tx.RefreshTokens().Revoke(ctx, record.ID, meta, time.Now()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		user, err := tx.Users().GetByID(ctx, record.UserID)
		if err != nil {
			return err
		}

		var issueErr error
		result, issueErr = issueTokenPair(ctx, tx, s.jwtManager, user, meta)
		return issueErr
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	return result, nil
}

// SignOut revokes the presented refresh token. Terminal: a replay of an
// already-consumed token fails with ErrInvalidToken, not success.
func (s *authService) SignOut(ctx context.Context, refreshToken string, meta domain.ClientMeta) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		record, err := tx.RefreshTokens().GetActive(ctx, claims.JTI, refreshToken)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if err := tx.RefreshTokens().Revoke(ctx, record.ID, meta, time.Now()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		return nil
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.logger.Info("user signed out", zap.String("user_id", claims.UserID))
	return nil
}

// GetUser returns the profile of a user including linked providers.
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeErr(err)
	}

	conns, err := s.store.OAuthConnections().GetByUserID(ctx, userID)
	if err != nil {
		return nil, s.storeErr(err)
	}

	providers := make([]string, 0, len(conns))
	for _, conn := range conns {
		providers = append(providers, conn.Provider.String())
	}

	return &dto.UserResponse{
		ID:          user.ID,
		Handle:      user.Handle,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		IsVerified:  user.IsVerified,
		HasPassword: user.HasPassword(),
		Providers:   providers,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ValidateToken verifies an access token. Signature and expiry only; access
// tokens are never looked up server-side.
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.AccessTokenClaims, error) {
	claims, err := s.jwtManager.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) parseRefresh(refreshToken string) (*domain.RefreshTokenClaims, error) {
	claims, err := s.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// storeErr maps infrastructure timeouts to the retryable transient error.
func (s *authService) storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// issueTokenPair mints an access and refresh token for user and persists the
// refresh record in the caller's transaction.
func issueTokenPair(ctx context.Context, tx repository.Store, jwtManager *utils.JWTManager, user *domain.User, meta domain.ClientMeta) (*AuthResult, error) {
	accessToken, err := jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &domain.RefreshTokenRecord{
		ID:        refresh.JTI,
		UserID:    user.ID,
		Token:     refresh.Token,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		IssuedAt:  refresh.IssuedAt,
		ExpiresAt: refresh.ExpiresAt,
	}

	if err := tx.RefreshTokens().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refresh.Token,
		AccessExpiresIn:  jwtManager.GetAccessTokenExpiry(),
		RefreshExpiresIn: jwtManager.GetRefreshTokenExpiry(),
		User:             user,
	}, nil
}
