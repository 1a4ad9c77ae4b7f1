package config

import "time"

const (
	ProviderLocal           = "local"
	ProviderIdentityToolkit = "identitytoolkit"
)

// Provider selects the identity backend.
func Provider() string {
	return GetEnv("PROVIDER", ProviderLocal)
}

// IdentityAPIKey is the API key for the hosted identity REST API.
func IdentityAPIKey() string {
	return MustGetEnv("IDENTITY_API_KEY")
}

func IdentityEndpoint() string {
	return GetEnv("IDENTITY_ENDPOINT", "https://identitytoolkit.googleapis.com/v1")
}

func IdentityTimeout() time.Duration {
	return MustParseDuration("IDENTITY_TIMEOUT", "10s")
}

// DBPath is the SQLite file of the local provider.
func DBPath() string {
	return GetEnv("DB_PATH", "signup.db")
}

func VerifyIssuer() string {
	return GetEnv("VERIFY_ISSUER", "signup-verify")
}

// VerifyExpiresIn is the lifetime of an email verification link.
func VerifyExpiresIn() time.Duration {
	return MustParseDuration("VERIFY_EXPIRES_IN", "24h")
}

// VerifyKeyFile is an optional PKCS#8 PEM Ed25519 key for verification tokens.
// Empty means a fresh key per process.
func VerifyKeyFile() string {
	return GetEnv("VERIFY_KEY_FILE", "")
}
