package domain

import "time"

// User represents a platform account. PasswordHash is nil for accounts that
// were created through an OAuth provider and never set a password.
type User struct {
	ID           string    `json:"id" db:"id"`
	Handle       string    `json:"handle" db:"handle"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	AvatarURL    *string   `json:"avatar_url" db:"avatar_url"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// OAuthConnection links a local user to one external identity.
// The pair (provider, provider_user_id) is unique system-wide, and a user
// holds at most one connection per provider.
type OAuthConnection struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Provider       Provider  `json:"provider" db:"provider"`
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// RefreshTokenRecord is the server-side state of one refresh token.
// ID equals the token's jti. The signed token text is stored verbatim so
// validation can require an exact match. Records are never deleted; a
// revoked record is terminal.
type RefreshTokenRecord struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Token     string     `json:"-" db:"token"`
	IPAddress *string    `json:"ip_address" db:"ip_address"`
	UserAgent *string    `json:"user_agent" db:"user_agent"`
	IssuedAt  time.Time  `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsActive reports whether the record can still validate.
func (r *RefreshTokenRecord) IsActive() bool {
	return r.RevokedAt == nil
}

// ClientMeta carries per-request client metadata recorded on token issuance
// and on revocation.
type ClientMeta struct {
	IPAddress *string
	UserAgent *string
}
