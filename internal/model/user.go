package model

import "time"

// User represents a registered account in the database. Accounts are created
// lazily on the first login attempt for an email and are never deleted here.
type User struct {
	ID        string
	Email     string
	EmailKey  string
	Name      string
	CreatedAt time.Time
}

// LoginRequest starts an email OTP login.
type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// VerifyRequest submits the emailed code against the pending challenge.
type VerifyRequest struct {
	Code string `json:"code"`
}

// UserResponse represents user data safe for API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned after a successful OTP verification.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
