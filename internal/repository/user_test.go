package repository

import (
	"testing"
)

func TestNewUserRepository(t *testing.T) {
	repo := NewUserRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil UserRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestNewReadingRepository(t *testing.T) {
	repo := NewReadingRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil ReadingRepository")
	}
}

func TestSentinelErrors(t *testing.T) {
	if ErrUserNotFound == nil {
		t.Fatal("ErrUserNotFound should not be nil")
	}
	if ErrUserNotFound.Error() != "user not found" {
		t.Fatalf("unexpected error message: %s", ErrUserNotFound.Error())
	}
}
