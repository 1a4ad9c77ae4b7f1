package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashEmail creates a consistent hash for logging without exposing PII
func HashEmail(email string) string {
	return hashPrefix(strings.ToLower(strings.TrimSpace(email)), 12)
}

// HashToken shortens opaque tokens and ids for log correlation.
func HashToken(token string) string {
	return hashPrefix(token, 8)
}

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPrefix(s string, n int) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])[:n]
}
