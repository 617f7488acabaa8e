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

func TestUserCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	hash := "bcrypt-hash"
	user := &domain.User{
		Handle:       "alice",
		Email:        "alice@example.com",
		PasswordHash: &hash,
		DisplayName:  "Alice",
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", &hash, "Alice", nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID, "missing id must be generated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateHandle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_handle_key"})

	err := repo.Create(context.Background(), &domain.User{Handle: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateHandle)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserGetByHandle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "handle", "email", "password_hash", "display_name", "avatar_url", "is_verified", "created_at", "updated_at",
	}).AddRow("user-1", "alice", "alice@example.com", nil, "Alice", nil, true, now, now)

	mock.ExpectQuery(`FROM users WHERE handle = \$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByHandle(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Nil(t, user.PasswordHash)
	assert.False(t, user.HasPassword())
	assert.True(t, user.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserClearPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET password_hash = NULL`).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ClearPassword(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserClearPasswordNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET password_hash = NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClearPassword(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
