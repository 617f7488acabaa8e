package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumenblog/auth-service/internal/config"
	"github.com/lumenblog/auth-service/internal/domain"
)

// Provider capability errors
var (
	// ErrExchangeFailed is returned when the authorization code could not be
	// exchanged for a provider access token
	ErrExchangeFailed = errors.New("oauth code exchange failed")

	// ErrProfileFetchFailed is returned when the provider profile endpoint
	// could not be reached or rejected the request
	ErrProfileFetchFailed = errors.New("oauth profile fetch failed")

	// ErrProfileParseFailed is returned when the provider profile response
	// could not be decoded
	ErrProfileParseFailed = errors.New("oauth profile parse failed")
)

// Profile is the normalized identity assertion fetched from a provider.
// Email may be empty when the provider keeps it private; callers must treat
// that as a distinct, reportable condition rather than an empty account.
type Profile struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Provider exchanges an authorization code and fetches the external profile.
// Both calls are outbound HTTP and happen before any local transaction.
type Provider interface {
	Name() domain.Provider
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// Registry resolves a configured Provider by name.
type Registry struct {
	providers map[domain.Provider]Provider
}

// NewRegistry builds the provider registry from configuration.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	return NewRegistryWith(
		NewGoogleProvider(cfg.Google, cfg.ExchangeTimeout.Duration),
		NewGithubProvider(cfg.Github, cfg.ExchangeTimeout.Duration),
	)
}

// NewRegistryWith builds a registry from explicit providers.
func NewRegistryWith(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[domain.Provider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name domain.Provider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("oauth provider %s is not configured", name)
	}
	return p, nil
}
