// Package provider defines the contract between the registration form and
// the identity backend that owns accounts.
package provider

import (
	"context"
	"errors"
)

// Identity is the opaque record returned after account creation. It is only
// handed back to the same provider for follow-up calls.
type Identity struct {
	UID   string
	Email string
	// Token is a provider credential scoped to follow-up calls on this identity.
	Token string
}

// Provider is the remote identity service used by the registration flow.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (Identity, error)
	SendVerification(ctx context.Context, id Identity) error
	SetDisplayName(ctx context.Context, id Identity, name string) error
}

// Error is a failure reported by the provider. Message is shown to the user as-is.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinel codes shared by providers.
var (
	ErrEmailExists  = errors.New("email already in use")
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("weak password")
	ErrUnavailable  = errors.New("provider unavailable")
)

// NewError builds a provider error wrapping one of the sentinels.
func NewError(sentinel error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: sentinel}
}

// Message extracts the user-facing text of err.
func Message(err error) string {
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}
