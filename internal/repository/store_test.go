package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenblog/auth-service/internal/domain"
)

func TestWithinTxCommits(t *testing.T) {
	db, mock := newMock(t)
	store := newSQLStore(db, db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Store) error {
		if err := tx.RefreshTokens().Revoke(context.Background(), "old-jti", domain.ClientMeta{}, time.Now()); err != nil {
			return err
		}
		return tx.RefreshTokens().Create(context.Background(), &domain.RefreshTokenRecord{ID: "new-jti"})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	store := newSQLStore(db, db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Store) error {
		return tx.RefreshTokens().Revoke(context.Background(), "old-jti", domain.ClientMeta{}, time.Now())
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxNestedJoinsEnclosing(t *testing.T) {
	db, mock := newMock(t)
	store := newSQLStore(db, db)

	// One Begin, one Commit: the inner call must not open a second
	// transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(outer Store) error {
		return outer.WithinTx(context.Background(), func(inner Store) error {
			return inner.RefreshTokens().Create(context.Background(), &domain.RefreshTokenRecord{ID: "jti-1"})
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxPropagatesFnError(t *testing.T) {
	db, mock := newMock(t)
	store := newSQLStore(db, db)

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(Store) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
