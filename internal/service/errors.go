package service

import "errors"

// Service-level error taxonomy. Handlers map these once onto HTTP statuses:
// authentication failures become a generic 401 with no detail on which check
// failed, conflicts become 4xx with a stable code, transient failures become
// 5xx and are safe for the caller to retry.
var (
	// Authentication failures

	// ErrUserNotFound is returned when no account matches the presented handle
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned on password mismatch, including accounts
	// that have no password credential at all
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidToken is returned for any refresh token that fails signature
	// verification or does not match an active stored record. Unknown jti,
	// token text mismatch and already-revoked records are deliberately
	// indistinguishable.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token's exp has passed, regardless of
	// stored state
	ErrTokenExpired = errors.New("token expired")

	// Conflict failures

	// ErrEmailTaken is returned when registering with an email that is in use
	ErrEmailTaken = errors.New("email already in use")

	// ErrHandleTaken is returned when registering with a handle that is in use
	ErrHandleTaken = errors.New("handle already in use")

	// ErrAlreadyLinked is returned when the OAuth identity is linked to a
	// different user, or the user already holds a connection for the provider
	ErrAlreadyLinked = errors.New("oauth account already linked")

	// ErrNotLinked is returned when unlinking a provider the user has no
	// connection for
	ErrNotLinked = errors.New("oauth account not linked")

	// ErrLastAuthMethod is returned when removing an authentication method
	// would leave the account with no way to sign in
	ErrLastAuthMethod = errors.New("cannot remove last authentication method")

	// ErrEmailNotProvided is returned when the OAuth provider did not expose
	// an email address for the account
	ErrEmailNotProvided = errors.New("oauth provider did not provide an email")

	// ErrHandleGenerationExhausted is returned when handle allocation hit its
	// attempt bound without finding a free candidate. Repeated exhaustion
	// signals a pathological store state, so this is a hard service error.
	ErrHandleGenerationExhausted = errors.New("handle generation exhausted")

	// Transient failures

	// ErrProviderUnavailable is returned when the OAuth provider exchange or
	// profile fetch failed; safe to retry
	ErrProviderUnavailable = errors.New("oauth provider unavailable")

	// ErrTransient is returned when the store was unreachable or timed out;
	// safe to retry
	ErrTransient = errors.New("transient infrastructure failure")
)
