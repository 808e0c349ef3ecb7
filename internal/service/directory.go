package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/repository"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrUserNotFound     = errors.New("user not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// UserStore is the persistence contract the directory needs.
type UserStore interface {
	CreateIfAbsent(ctx context.Context, user *model.User) (*model.User, error)
	GetByEmailKey(ctx context.Context, emailKey string) (*model.User, error)
}

// Directory resolves emails to user accounts, creating them lazily on first
// login.
type Directory struct {
	store UserStore
}

// NewDirectory creates a new Directory.
func NewDirectory(store UserStore) *Directory {
	return &Directory{store: store}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailKey returns the storage key for an address: normalized, with dots
// substituted by commas. The substitution is reversible and kept for
// compatibility with key namespaces that forbid dots.
func EmailKey(email string) string {
	return strings.ReplaceAll(NormalizeEmail(email), ".", ",")
}

// ResolveOrCreate returns the user for email, creating the account when the
// address has not been seen before. Repeated calls with the same email are
// idempotent and converge on one account.
func (d *Directory) ResolveOrCreate(ctx context.Context, email, name string) (*model.User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrEmailRequired
	}

	candidate := &model.User{
		ID:       uuid.NewString(),
		Email:    normalized,
		EmailKey: EmailKey(normalized),
		Name:     name,
	}

	user, err := d.store.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, storeError(err)
	}

	return user, nil
}

// FindByEmail looks up the user for email. Returns ErrUserNotFound when the
// address has never logged in.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrEmailRequired
	}

	user, err := d.store.GetByEmailKey(ctx, EmailKey(normalized))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}

	return user, nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
