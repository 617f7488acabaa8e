package domain

import "time"

// AccessTokenClaims are the decoded claims of an access token. Access tokens
// carry no jti and are never looked up server-side; their only authority is a
// valid signature and an unexpired exp.
type AccessTokenClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshTokenClaims are the decoded claims of a refresh token. JTI
// correlates the token to its RefreshTokenRecord.
type RefreshTokenClaims struct {
	UserID    string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
