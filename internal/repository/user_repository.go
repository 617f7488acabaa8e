package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lumenblog/auth-service/internal/domain"
)

// userRepository implements UserRepository interface
type userRepository struct {
	q Queryer
}

// NewUserRepository creates a new user repository
func NewUserRepository(q Queryer) UserRepository {
	return &userRepository{q: q}
}

const userColumns = `id, handle, email, password_hash, display_name, avatar_url, is_verified, created_at, updated_at`

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, handle, email, password_hash, display_name, avatar_url, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Handle,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "handle") {
				return fmt.Errorf("user with handle %s already exists: %w", user.Handle, ErrDuplicateHandle)
			}
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.q.QueryRowContext(ctx, query, id), fmt.Sprintf("user with id %s", id))
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.q.QueryRowContext(ctx, query, email), fmt.Sprintf("user with email %s", email))
}

// GetByHandle retrieves a user by handle
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE handle = $1`, userColumns)
	return r.scanUser(r.q.QueryRowContext(ctx, query, handle), fmt.Sprintf("user with handle %s", handle))
}

// ClearPassword removes a user's password credential. The service layer is
// responsible for ensuring another authentication method remains.
func (r *userRepository) ClearPassword(ctx context.Context, userID string) error {
	query := `UPDATE users SET password_hash = NULL, updated_at = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clear password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) scanUser(row *sql.Row, desc string) (*domain.User, error) {
	user := &domain.User{}
	var passwordHash, avatarURL sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Handle,
		&user.Email,
		&passwordHash,
		&user.DisplayName,
		&avatarURL,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s not found: %w", desc, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}

	return user, nil
}
