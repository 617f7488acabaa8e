package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenblog/auth-service/internal/domain"
)

func TestOAuthConnectionCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	conn := &domain.OAuthConnection{
		UserID:         "user-1",
		Provider:       domain.ProviderGoogle,
		ProviderUserID: "g-123",
	}

	mock.ExpectExec(`INSERT INTO oauth_connections`).
		WithArgs(sqlmock.AnyArg(), "user-1", domain.ProviderGoogle, "g-123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), conn)
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthConnectionCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	mock.ExpectExec(`INSERT INTO oauth_connections`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "oauth_connections_provider_provider_user_id_key"})

	err := repo.Create(context.Background(), &domain.OAuthConnection{})
	assert.ErrorIs(t, err, ErrDuplicateConnection)
}

func TestOAuthConnectionGetByProviderUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "provider", "provider_user_id", "created_at"}).
		AddRow("conn-1", "user-1", "google", "g-123", now)

	mock.ExpectQuery(`WHERE provider = \$1 AND provider_user_id = \$2`).
		WithArgs(domain.ProviderGoogle, "g-123").
		WillReturnRows(rows)

	conn, err := repo.GetByProviderUserID(context.Background(), domain.ProviderGoogle, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", conn.UserID)
	assert.Equal(t, domain.ProviderGoogle, conn.Provider)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthConnectionGetByProviderUserIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	mock.ExpectQuery(`WHERE provider = \$1 AND provider_user_id = \$2`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByProviderUserID(context.Background(), domain.ProviderGithub, "gh-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOAuthConnectionGetByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "provider", "provider_user_id", "created_at"}).
		AddRow("conn-2", "user-1", "github", "gh-9", now).
		AddRow("conn-1", "user-1", "google", "g-123", now.Add(-time.Hour))

	mock.ExpectQuery(`FROM oauth_connections\s+WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	conns, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, domain.ProviderGithub, conns[0].Provider)
	assert.Equal(t, domain.ProviderGoogle, conns[1].Provider)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthConnectionDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOAuthConnectionRepository(db)

	mock.ExpectExec(`DELETE FROM oauth_connections WHERE id = \$1`).
		WithArgs("conn-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "conn-1"))

	mock.ExpectExec(`DELETE FROM oauth_connections WHERE id = \$1`).
		WithArgs("conn-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "conn-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
