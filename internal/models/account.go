package models

import "time"

// Account is a user record owned by the self-hosted provider.
type Account struct {
	UID           string
	Email         string
	PasswordHash  string
	DisplayName   string
	EmailVerified bool
	CreatedAt     time.Time
}
