package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lumenblog/auth-service/internal/domain"
)

// Token codec errors. Verification collapses every failure into one of these
// two; callers must not learn which claim or byte was wrong beyond expiry.
var (
	// ErrTokenExpired is returned when a token's exp has passed.
	ErrTokenExpired = errors.New("token is expired")

	// ErrInvalidToken is returned for any other verification failure
	// (bad signature, malformed claims, wrong token type).
	ErrInvalidToken = errors.New("invalid token")
)

const refreshTokenType = "refresh"

// refreshClaims is the wire shape of a refresh token: registered sub/iat/exp
// plus the jti in ID and a type discriminator so an access token can never be
// replayed as a refresh token.
type refreshClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// RefreshTokenData is the result of minting one refresh token. JTI doubles as
// the primary key of the stored RefreshTokenRecord.
type RefreshTokenData struct {
	Token     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTManager mints and verifies access and refresh tokens with a single
// symmetric key configured at process start. All operations are local and
// side-effect-free; this is the stateless fast path on every request.
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// GenerateAccessToken generates a new access token for a user.
// Access tokens carry no jti and are never tracked server-side.
func (j *JWTManager) GenerateAccessToken(userID string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken generates a new refresh token with a fresh random jti.
// A jti collision is not retried here; randomness makes it negligible and the
// store's unique constraint is the backstop.
func (j *JWTManager) GenerateRefreshToken(userID string) (*RefreshTokenData, error) {
	now := time.Now()
	expiresAt := now.Add(j.refreshTokenExpiry)
	jti := uuid.New().String()

	claims := refreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &RefreshTokenData{
		Token:     tokenString,
		JTI:       jti,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseAccessToken verifies signature and expiry of an access token and
// returns its claims.
func (j *JWTManager) ParseAccessToken(tokenString string) (*domain.AccessTokenClaims, error) {
	claims := &jwt.RegisteredClaims{}

	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &domain.AccessTokenClaims{
		UserID:    claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ParseRefreshToken verifies signature, expiry and token type of a refresh
// token and returns its claims including the jti.
func (j *JWTManager) ParseRefreshToken(tokenString string) (*domain.RefreshTokenClaims, error) {
	claims := &refreshClaims{}

	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &domain.RefreshTokenClaims{
		UserID:    claims.Subject,
		JTI:       claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}

// GetAccessTokenExpiry returns the access token expiry duration in seconds
func (j *JWTManager) GetAccessTokenExpiry() int {
	return int(j.accessTokenExpiry.Seconds())
}

// GetRefreshTokenExpiry returns the refresh token expiry duration in seconds
func (j *JWTManager) GetRefreshTokenExpiry() int {
	return int(j.refreshTokenExpiry.Seconds())
}
