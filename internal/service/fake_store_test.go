package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/repository"
)

// fakeStore is an in-memory repository.Store enforcing the same unique
// constraints and conditional-update semantics as the SQL implementation.
type fakeStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	tokens map[string]*domain.RefreshTokenRecord
	conns  map[string]*domain.OAuthConnection

	// test hooks, invoked while the lock is not held
	onUserCreate func()
	onConnCreate func()
	handleTaken  func(handle string) bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*domain.RefreshTokenRecord),
		conns:  make(map[string]*domain.OAuthConnection),
	}
}

func (f *fakeStore) Users() repository.UserRepository                 { return &fakeUsers{f} }
func (f *fakeStore) RefreshTokens() repository.RefreshTokenRepository { return &fakeTokens{f} }
func (f *fakeStore) OAuthConnections() repository.OAuthConnectionRepository {
	return &fakeConns{f}
}

func (f *fakeStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(f)
}

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) Create(_ context.Context, user *domain.User) error {
	if r.s.onUserCreate != nil {
		r.s.onUserCreate()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Handle == user.Handle {
			return repository.ErrDuplicateHandle
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) GetByHandle(_ context.Context, handle string) (*domain.User, error) {
	if r.s.handleTaken != nil && r.s.handleTaken(handle) {
		return &domain.User{ID: "occupied", Handle: handle}, nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Handle == handle {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) ClearPassword(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = nil
	return nil
}

type fakeTokens struct{ s *fakeStore }

func (r *fakeTokens) Create(_ context.Context, record *domain.RefreshTokenRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[record.ID]; ok {
		return repository.ErrDuplicateJTI
	}

	clone := *record
	r.s.tokens[record.ID] = &clone
	return nil
}

func (r *fakeTokens) GetActive(_ context.Context, jti, token string) (*domain.RefreshTokenRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tokens[jti]
	if !ok || rec.Token != token || rec.RevokedAt != nil {
		return nil, repository.ErrNotFound
	}

	clone := *rec
	return &clone, nil
}

func (r *fakeTokens) Revoke(_ context.Context, jti string, meta domain.ClientMeta, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tokens[jti]
	if !ok || rec.RevokedAt != nil {
		return repository.ErrNotFound
	}

	rec.RevokedAt = &at
	rec.IPAddress = meta.IPAddress
	rec.UserAgent = meta.UserAgent
	return nil
}

type fakeConns struct{ s *fakeStore }

func (r *fakeConns) Create(_ context.Context, conn *domain.OAuthConnection) error {
	if r.s.onConnCreate != nil {
		r.s.onConnCreate()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.conns {
		if c.Provider == conn.Provider && c.ProviderUserID == conn.ProviderUserID {
			return repository.ErrDuplicateConnection
		}
		if c.Provider == conn.Provider && c.UserID == conn.UserID {
			return repository.ErrDuplicateConnection
		}
	}

	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}

	clone := *conn
	r.s.conns[conn.ID] = &clone
	return nil
}

func (r *fakeConns) GetByProviderUserID(_ context.Context, provider domain.Provider, providerUserID string) (*domain.OAuthConnection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.conns {
		if c.Provider == provider && c.ProviderUserID == providerUserID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConns) GetByUserID(_ context.Context, userID string) ([]*domain.OAuthConnection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.OAuthConnection
	for _, c := range r.s.conns {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConns) Delete(_ context.Context, connectionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.conns[connectionID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.conns, connectionID)
	return nil
}
