package identity

import (
	"context"
	"errors"
	"time"
)

// Provider is the external identity service consumed by the driver client.
// It is the sole source of the driver id used to key all document operations.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
}

// User is an authenticated identity session.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

var (
	// ErrInvalidCredentials is returned when the email/password pair is rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailAlreadyInUse is returned when signing up with a registered email.
	ErrEmailAlreadyInUse = errors.New("email already in use")

	// ErrInvalidEmail is returned when the email address is malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when the password does not meet the minimum policy.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrUserDisabled is returned when the account has been disabled.
	ErrUserDisabled = errors.New("user account is disabled")
)
