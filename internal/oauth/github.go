package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lumenblog/auth-service/internal/config"
	"github.com/lumenblog/auth-service/internal/domain"
)

const (
	githubTokenURL  = "https://github.com/login/oauth/access_token"
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// githubProvider implements Provider for GitHub
type githubProvider struct {
	cfg    config.OAuthProviderConfig
	client *http.Client

	tokenURL  string
	userURL   string
	emailsURL string
}

// NewGithubProvider creates the GitHub OAuth provider client
func NewGithubProvider(cfg config.OAuthProviderConfig, timeout time.Duration) Provider {
	return &githubProvider{
		cfg:       cfg,
		client:    &http.Client{Timeout: timeout},
		tokenURL:  githubTokenURL,
		userURL:   githubUserURL,
		emailsURL: githubEmailsURL,
	}
}

func (p *githubProvider) Name() domain.Provider {
	return domain.ProviderGithub
}

// ExchangeCode exchanges an authorization code for a GitHub access token
func (p *githubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
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
		return "", fmt.Errorf("%w: github returned status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access token", ErrExchangeFailed)
	}

	return body.AccessToken, nil
}

// FetchProfile fetches the GitHub user profile. GitHub may keep the email
// private on /user; in that case the primary verified email is looked up on
// /user/emails before giving up.
func (p *githubProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var body struct {
		ID        int64   `json:"id"`
		Login     string  `json:"login"`
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		AvatarURL string  `json:"avatar_url"`
	}

	if err := p.getJSON(ctx, p.userURL, accessToken, &body); err != nil {
		return nil, err
	}

	if body.ID == 0 {
		return nil, fmt.Errorf("%w: missing subject id", ErrProfileParseFailed)
	}

	email := ""
	if body.Email != nil {
		email = *body.Email
	}
	if email == "" {
		primary, err := p.fetchPrimaryEmail(ctx, accessToken)
		if err == nil {
			email = primary
		}
	}

	displayName := body.Login
	if body.Name != nil && *body.Name != "" {
		displayName = *body.Name
	}

	return &Profile{
		SubjectID:   strconv.FormatInt(body.ID, 10),
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   body.AvatarURL,
	}, nil
}

func (p *githubProvider) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}

	if err := p.getJSON(ctx, p.emailsURL, accessToken, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}

	return "", fmt.Errorf("%w: no primary verified email", ErrProfileFetchFailed)
}

func (p *githubProvider) getJSON(ctx context.Context, endpoint, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: github returned status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileParseFailed, err)
	}

	return nil
}
