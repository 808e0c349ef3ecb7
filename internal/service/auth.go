package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/crypto"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/mail"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/session"
)

var (
	ErrExpiredOTP     = errors.New("otp expired, request a new code")
	ErrIncorrectOTP   = errors.New("incorrect otp")
	ErrSessionExpired = errors.New("session expired, log in again")
	ErrMailDispatch   = errors.New("failed to send otp email")
)

const (
	otpTTL     = 5 * time.Minute
	otpSubject = "Your OTP Code"
)

// UserDirectory is the account contract the authenticator needs.
type UserDirectory interface {
	ResolveOrCreate(ctx context.Context, email, name string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService runs the email OTP login flow against a caller's session
// record. A session holds at most one outstanding challenge; issuing again
// supersedes any earlier code even before its natural expiry.
type AuthService struct {
	directory UserDirectory
	mailer    mail.Mailer

	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(directory UserDirectory, mailer mail.Mailer) *AuthService {
	return &AuthService{
		directory: directory,
		mailer:    mailer,
		now:       time.Now,
	}
}

// Issue generates a login code for email, dispatches it by mail and commits
// the challenge into the session. The code reaches the caller only through
// the mailer, never through a response. A failed dispatch commits nothing.
func (s *AuthService) Issue(ctx context.Context, sess *session.State, email, name string) error {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return ErrEmailRequired
	}

	if err := s.dispatch(ctx, sess, normalized); err != nil {
		return err
	}

	// The account exists as soon as the first code goes out, matching the
	// login-time creation the device ingest path relies on.
	if _, err := s.directory.ResolveOrCreate(ctx, normalized, name); err != nil {
		return err
	}

	return nil
}

// Resend re-issues a code for the session's email, superseding the previous
// challenge. Fails with ErrSessionExpired when no login was started in this
// session.
func (s *AuthService) Resend(ctx context.Context, sess *session.State) error {
	if sess.Email == "" {
		return ErrSessionExpired
	}
	return s.dispatch(ctx, sess, sess.Email)
}

// Verify checks code against the session's current challenge. On success the
// session is marked authenticated, the challenge is consumed, and the user
// account is ensured to exist. An incorrect code never mutates the
// authenticated flag.
func (s *AuthService) Verify(ctx context.Context, sess *session.State, code string) (*model.User, error) {
	challenge := sess.Challenge
	if challenge == nil || s.now().After(challenge.ExpiresAt) {
		return nil, ErrExpiredOTP
	}

	match, err := crypto.VerifyOTP(strings.TrimSpace(code), challenge.CodeHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrIncorrectOTP
	}

	user, err := s.directory.ResolveOrCreate(ctx, sess.Email, "")
	if err != nil {
		return nil, err
	}

	sess.Authenticated = true
	sess.DisplayName = user.Name
	sess.Challenge = nil

	return user, nil
}

// Logout clears the login state from the session record.
func (s *AuthService) Logout(sess *session.State) {
	*sess = session.State{}
}

func (s *AuthService) dispatch(ctx context.Context, sess *session.State, email string) error {
	code, err := crypto.GenerateOTP()
	if err != nil {
		return err
	}

	hash, err := crypto.HashOTP(code)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP is: %s", code)
	if err := s.mailer.Send(ctx, email, otpSubject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}

	now := s.now()
	sess.Email = email
	sess.Challenge = &session.Challenge{
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(otpTTL),
	}

	return nil
}
