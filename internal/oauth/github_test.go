package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenblog/auth-service/internal/config"
	"github.com/lumenblog/auth-service/internal/domain"
)

func newGithubTestProvider(tokenURL, userURL, emailsURL string) *githubProvider {
	p := NewGithubProvider(config.OAuthProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, time.Second).(*githubProvider)
	p.tokenURL = tokenURL
	p.userURL = userURL
	p.emailsURL = emailsURL
	return p
}

func TestGithubExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gh-token"}`))
	}))
	defer srv.Close()

	p := newGithubTestProvider(srv.URL, "", "")

	token, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "gh-token", token)
}

func TestGithubFetchProfilePublicEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"login":"octocat","name":"The Octocat","email":"octo@example.com","avatar_url":"https://img.example.com/octo.png"}`))
	}))
	defer srv.Close()

	p := newGithubTestProvider("", srv.URL, "")

	profile, err := p.FetchProfile(context.Background(), "gh-token")
	require.NoError(t, err)
	assert.Equal(t, "42", profile.SubjectID)
	assert.Equal(t, "octo@example.com", profile.Email)
	assert.Equal(t, "The Octocat", profile.DisplayName)
}

func TestGithubFetchProfilePrivateEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"login":"octocat","email":null,"avatar_url":""}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"email":"secondary@example.com","primary":false,"verified":true},
			{"email":"unverified@example.com","primary":true,"verified":false},
			{"email":"primary@example.com","primary":true,"verified":true}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newGithubTestProvider("", srv.URL+"/user", srv.URL+"/user/emails")

	profile, err := p.FetchProfile(context.Background(), "gh-token")
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", profile.Email)
	// No display name set: the login is the fallback.
	assert.Equal(t, "octocat", profile.DisplayName)
}

func TestGithubFetchProfileNoUsableEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"login":"octocat","email":null}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newGithubTestProvider("", srv.URL+"/user", srv.URL+"/user/emails")

	// The profile still resolves; the empty email is the caller's problem to
	// report.
	profile, err := p.FetchProfile(context.Background(), "gh-token")
	require.NoError(t, err)
	assert.Empty(t, profile.Email)
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistryWith(newGithubTestProvider("", "", ""))

	p, err := registry.Get(domain.ProviderGithub)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGithub, p.Name())

	_, err = registry.Get(domain.ProviderGoogle)
	assert.Error(t, err)
}
