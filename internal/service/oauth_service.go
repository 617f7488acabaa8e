package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/oauth"
	"github.com/lumenblog/auth-service/internal/repository"
	"github.com/lumenblog/auth-service/internal/utils"
	"go.uber.org/zap"
)

// oauthService implements OAuthService
type oauthService struct {
	store        repository.Store
	providers    *oauth.Registry
	jwtManager   *utils.JWTManager
	allocator    *handleAllocator
	logger       *zap.Logger
	queryTimeout time.Duration
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(
	store repository.Store,
	providers *oauth.Registry,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
	handleLength, handleMaxAttempts int,
	queryTimeout time.Duration,
) OAuthService {
	return &oauthService{
		store:        store,
		providers:    providers,
		jwtManager:   jwtManager,
		allocator:    newHandleAllocator(handleLength, handleMaxAttempts, logger),
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

// SignIn exchanges the provider code, resolves the external identity to a
// local user (creating or linking as needed) and issues a token pair. The
// provider HTTP calls happen before the local transaction begins.
func (s *oauthService) SignIn(ctx context.Context, providerName domain.Provider, code string, meta domain.ClientMeta) (*AuthResult, error) {
	profile, err := s.fetchProfile(ctx, providerName, code)
	if err != nil {
		return nil, err
	}

	if profile.Email == "" {
		return nil, ErrEmailNotProvided
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Losing a first-login race surfaces as a duplicate insert, which aborts
	// the transaction. By the time it rolls back the winner's rows are
	// committed, so one rerun resolves the same identity as a returning login.
	result, isNew, err := s.resolveAndIssue(ctx, providerName, profile, meta)
	if errors.Is(err, repository.ErrDuplicateConnection) || errors.Is(err, repository.ErrDuplicateEmail) {
		result, isNew, err = s.resolveAndIssue(ctx, providerName, profile, meta)
	}
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.logger.Info("oauth sign-in",
		zap.String("provider", providerName.String()),
		zap.String("user_id", result.User.ID),
		zap.Bool("new_user", isNew),
	)

	return result, nil
}

// resolveAndIssue runs one resolution attempt and token issuance in a single
// transaction.
func (s *oauthService) resolveAndIssue(ctx context.Context, provider domain.Provider, profile *oauth.Profile, meta domain.ClientMeta) (*AuthResult, bool, error) {
	var result *AuthResult
	var isNew bool
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, created, err := s.resolveOrCreateUser(ctx, tx, provider, profile)
		if err != nil {
			return err
		}
		isNew = created

		var issueErr error
		result, issueErr = issueTokenPair(ctx, tx, s.jwtManager, user, meta)
		return issueErr
	})
	return result, isNew, err
}

// resolveOrCreateUser maps a verified external identity onto a local user:
//
//  1. An existing connection for (provider, subject id) means a returning
//     user.
//  2. Otherwise a user with the same email gets the connection attached.
//     Email equality is deliberately treated as proof of same-person
//     identity; the provider is trusted to have verified the address.
//  3. Otherwise a new user is created with a generated handle, no password
//     credential and verified=true, plus the connection.
//
// Two concurrent first-time logins can both reach step 3; the unique
// constraints on email and (provider, subject id) let exactly one insert win.
// The loser's duplicate error propagates out so the caller can rerun the
// resolution in a fresh transaction.
func (s *oauthService) resolveOrCreateUser(ctx context.Context, tx repository.Store, provider domain.Provider, profile *oauth.Profile) (*domain.User, bool, error) {
	conn, err := tx.OAuthConnections().GetByProviderUserID(ctx, provider, profile.SubjectID)
	if err == nil {
		user, err := tx.Users().GetByID(ctx, conn.UserID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user, err := tx.Users().GetByEmail(ctx, utils.SanitizeEmail(profile.Email))
	if err == nil {
		if err := s.createConnection(ctx, tx, user.ID, provider, profile.SubjectID); err != nil {
			return nil, false, err
		}

		s.logger.Info("linked oauth identity to existing account by email",
			zap.String("provider", provider.String()),
			zap.String("user_id", user.ID),
		)
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	handle, err := s.allocator.Allocate(ctx, tx.Users())
	if err != nil {
		return nil, false, err
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = handle
	}

	var avatarURL *string
	if profile.AvatarURL != "" {
		avatarURL = &profile.AvatarURL
	}

	newUser := &domain.User{
		Handle:      handle,
		Email:       utils.SanitizeEmail(profile.Email),
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		IsVerified:  true,
	}

	if err := tx.Users().Create(ctx, newUser); err != nil {
		return nil, false, err
	}

	if err := s.createConnection(ctx, tx, newUser.ID, provider, profile.SubjectID); err != nil {
		return nil, false, err
	}

	return newUser, true, nil
}

func (s *oauthService) createConnection(ctx context.Context, tx repository.Store, userID string, provider domain.Provider, subjectID string) error {
	return tx.OAuthConnections().Create(ctx, &domain.OAuthConnection{
		UserID:         userID,
		Provider:       provider,
		ProviderUserID: subjectID,
	})
}

// Link attaches an OAuth identity to an existing account. Re-linking the
// identity the user already holds is idempotent; an identity owned by a
// different user, or a second identity for a provider the user already has,
// fails with ErrAlreadyLinked.
func (s *oauthService) Link(ctx context.Context, userID string, providerName domain.Provider, code string) error {
	profile, err := s.fetchProfile(ctx, providerName, code)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		existing, err := tx.OAuthConnections().GetByProviderUserID(ctx, providerName, profile.SubjectID)
		if err == nil {
			if existing.UserID == userID {
				return nil
			}
			return ErrAlreadyLinked
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		conns, err := tx.OAuthConnections().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for _, conn := range conns {
			if conn.Provider == providerName {
				return ErrAlreadyLinked
			}
		}

		if err := s.createConnection(ctx, tx, userID, providerName, profile.SubjectID); err != nil {
			if errors.Is(err, repository.ErrDuplicateConnection) {
				return ErrAlreadyLinked
			}
			return err
		}

		return nil
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.logger.Info("oauth account linked",
		zap.String("provider", providerName.String()),
		zap.String("user_id", userID),
	)

	return nil
}

// Unlink removes an OAuth connection. An account must always retain at least
// one way to authenticate, so removing the sole method fails.
func (s *oauthService) Unlink(ctx context.Context, userID string, providerName domain.Provider) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		conns, err := tx.OAuthConnections().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		var target *domain.OAuthConnection
		for _, conn := range conns {
			if conn.Provider == providerName {
				target = conn
				break
			}
		}
		if target == nil {
			return ErrNotLinked
		}

		authMethods := len(conns)
		if user.HasPassword() {
			authMethods++
		}
		if authMethods <= 1 {
			return ErrLastAuthMethod
		}

		return tx.OAuthConnections().Delete(ctx, target.ID)
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.logger.Info("oauth account unlinked",
		zap.String("provider", providerName.String()),
		zap.String("user_id", userID),
	)

	return nil
}

// RemovePassword drops the password credential, allowed only while at least
// one OAuth connection remains.
func (s *oauthService) RemovePassword(ctx context.Context, userID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if !user.HasPassword() {
			return nil
		}

		conns, err := tx.OAuthConnections().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(conns) == 0 {
			return ErrLastAuthMethod
		}

		return tx.Users().ClearPassword(ctx, userID)
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.logger.Info("password credential removed", zap.String("user_id", userID))
	return nil
}

// fetchProfile runs the outbound provider calls. No local locks or
// transactions are held across these.
func (s *oauthService) fetchProfile(ctx context.Context, providerName domain.Provider, code string) (*oauth.Profile, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	accessToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return profile, nil
}

func (s *oauthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *oauthService) storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}
