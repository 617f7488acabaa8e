package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found. For refresh token
	// lookups this deliberately covers unknown jti, token text mismatch and
	// already-revoked records alike.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user insert violates the email
	// unique constraint
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateHandle is returned when a user insert violates the handle
	// unique constraint
	ErrDuplicateHandle = errors.New("user with this handle already exists")

	// ErrDuplicateJTI is returned when a refresh token insert collides on jti
	ErrDuplicateJTI = errors.New("refresh token with this jti already exists")

	// ErrDuplicateConnection is returned when an OAuth connection insert
	// violates the (provider, provider_user_id) unique constraint
	ErrDuplicateConnection = errors.New("oauth connection already exists")
)
