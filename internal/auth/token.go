package auth

import (
	"errors"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrKeyNotInitialized = errors.New("ed25519 key not initialized")
	ErrInvalidToken      = errors.New("invalid verification token")
)

// VerificationClaims is the payload of an email verification link.
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and checks verification tokens.
type Issuer struct {
	key    *SigningKey
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. A nil key falls back to the process signing key.
func NewIssuer(key *SigningKey, issuer string, ttl time.Duration) *Issuer {
	if key == nil {
		key = GetSigningKey()
	}
	return &Issuer{key: key, issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed token for uid/email and its unique id.
func (i *Issuer) Issue(uid, email string) (token, id string, err error) {
	if i.key == nil || i.key.PrivateKey == nil {
		return "", "", ErrKeyNotInitialized
	}

	now := i.now()
	id = uuid.NewString()
	claims := VerificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   uid,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(i.key.PrivateKey)
	if err != nil {
		logging.ErrorLog("Verification token signing failed [%s]: %v", utils.HashEmail(email), err)
		return "", "", err
	}
	logging.DebugLog("Verification token issued [%s] id=[%s]", utils.HashEmail(email), utils.HashToken(id))
	return token, id, nil
}

// Parse validates signature, issuer and expiry and returns the claims.
func (i *Issuer) Parse(tokenStr string) (*VerificationClaims, error) {
	if i.key == nil || i.key.PublicKey == nil {
		return nil, ErrKeyNotInitialized
	}

	claims := &VerificationClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// Enforce that we only accept EdDSA signed tokens
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.key.PublicKey, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		logging.DebugLog("Verification token rejected: %v", err)
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
