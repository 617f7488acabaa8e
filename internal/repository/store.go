package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumenblog/auth-service/pkg/database"
)

// Queryer is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting each repository run against either.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlStore implements Store on top of Postgres
type sqlStore struct {
	db    *sql.DB
	users UserRepository
	token RefreshTokenRepository
	oauth OAuthConnectionRepository
}

// NewStore creates the repository store backed by Postgres
func NewStore(db *database.Postgres) Store {
	return newSQLStore(db.DB, db.DB)
}

func newSQLStore(db *sql.DB, q Queryer) *sqlStore {
	return &sqlStore{
		db:    db,
		users: NewUserRepository(q),
		token: NewRefreshTokenRepository(q),
		oauth: NewOAuthConnectionRepository(q),
	}
}

func (s *sqlStore) Users() UserRepository                       { return s.users }
func (s *sqlStore) RefreshTokens() RefreshTokenRepository       { return s.token }
func (s *sqlStore) OAuthConnections() OAuthConnectionRepository { return s.oauth }

// WithinTx runs fn inside a database transaction. A nil db means this store
// is already transactional and fn joins the enclosing transaction.
func (s *sqlStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := newSQLStore(nil, tx)

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
