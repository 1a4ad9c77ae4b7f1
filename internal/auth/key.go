package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
)

type SigningKey struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

var (
	signingKey *SigningKey
	once       sync.Once
)

// InitSigningKey loads the verification-token key from path, or generates a
// fresh one when path is empty. Only the first call has an effect.
func InitSigningKey(path string) error {
	var err error
	once.Do(func() {
		start := time.Now()

		var key *SigningKey
		if path == "" {
			key, err = GenerateKey()
		} else {
			key, err = LoadKeyFile(path)
		}
		if err != nil {
			logging.ErrorLog("Signing key initialization failed: %v", err)
			return
		}

		signingKey = key
		logging.InfoLog("Signing key initialized (file=%t) %v", path != "", time.Since(start))
	})
	return err
}

func GetSigningKey() *SigningKey {
	if signingKey == nil {
		logging.WarnLog("Signing key accessed before initialization")
	}
	return signingKey
}

// GenerateKey creates a new random Ed25519 key pair.
func GenerateKey() (*SigningKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &SigningKey{PrivateKey: priv, PublicKey: pub}, nil
}

// LoadKeyFile reads a PKCS#8 "PRIVATE KEY" PEM file holding an Ed25519 key.
func LoadKeyFile(path string) (*SigningKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyPEM(data)
}

func ParsePrivateKeyPEM(data []byte) (*SigningKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("invalid PEM format or missing private key")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("not an Ed25519 private key")
	}
	return &SigningKey{PrivateKey: priv, PublicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// MarshalPrivateKeyPEM encodes key as a PKCS#8 PEM block.
func MarshalPrivateKeyPEM(key *SigningKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key.PrivateKey)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
