package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user persistence operations. Rows are addressed by a
// normalized email key backed by a unique index.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateIfAbsent inserts the user unless the email key is already mapped and
// returns the canonical row either way. The unique index on email_key makes
// this a conditional write, so two racing first logins for the same email
// converge on a single row without an in-process lock.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *model.User) (*model.User, error) {
	query := `INSERT INTO users (id, email, email_key, name) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id`

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.EmailKey, user.Name); err != nil {
		return nil, err
	}

	return r.GetByEmailKey(ctx, user.EmailKey)
}

// GetByEmailKey retrieves a user by their normalized email key.
func (r *UserRepository) GetByEmailKey(ctx context.Context, emailKey string) (*model.User, error) {
	query := `SELECT id, email, email_key, name, created_at FROM users WHERE email_key = ?`

	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, emailKey).Scan(
		&user.ID, &user.Email, &user.EmailKey, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, email, email_key, name, created_at FROM users WHERE id = ?`

	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.EmailKey, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
