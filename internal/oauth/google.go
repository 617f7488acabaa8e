package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumenblog/auth-service/internal/config"
	"github.com/lumenblog/auth-service/internal/domain"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// googleProvider implements Provider for Google
type googleProvider struct {
	cfg    config.OAuthProviderConfig
	client *http.Client

	tokenURL    string
	userInfoURL string
}

// NewGoogleProvider creates the Google OAuth provider client
func NewGoogleProvider(cfg config.OAuthProviderConfig, timeout time.Duration) Provider {
	return &googleProvider{
		cfg:         cfg,
		client:      &http.Client{Timeout: timeout},
		tokenURL:    googleTokenURL,
		userInfoURL: googleUserInfoURL,
	}
}

func (p *googleProvider) Name() domain.Provider {
	return domain.ProviderGoogle
}

// ExchangeCode exchanges an authorization code for a Google access token
func (p *googleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"redirect_uri":  {p.cfg.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: google returned status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access token", ErrExchangeFailed)
	}

	return body.AccessToken, nil
}

// FetchProfile fetches the Google userinfo profile
func (p *googleProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google returned status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	var body struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileParseFailed, err)
	}

	if body.Sub == "" {
		return nil, fmt.Errorf("%w: missing subject id", ErrProfileParseFailed)
	}

	return &Profile{
		SubjectID:   body.Sub,
		Email:       body.Email,
		DisplayName: body.Name,
		AvatarURL:   body.Picture,
	}, nil
}
