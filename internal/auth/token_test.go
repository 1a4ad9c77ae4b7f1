package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return NewIssuer(key, "signup-test", time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	iss := newTestIssuer(t)

	tok, id, err := iss.Issue("uid-1", "jane@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "uid-1" || claims.Email != "jane@example.com" || claims.ID != id {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	iss := newTestIssuer(t)
	tok, _, _ := iss.Issue("uid-1", "jane@example.com")

	other := newTestIssuer(t)
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected foreign key rejection, got %v", err)
	}

	wrongIssuer := NewIssuer(iss.key, "someone-else", time.Hour)
	if _, err := wrongIssuer.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected issuer rejection, got %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expiry rejection, got %v", err)
	}

	if _, err := newTestIssuer(t).Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected garbage rejection, got %v", err)
	}
}

func TestParseRejectsHMAC(t *testing.T) {
	iss := newTestIssuer(t)
	claims := VerificationClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "uid",
		ID:        "id",
		Issuer:    "signup-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected HS256 rejection, got %v", err)
	}
}

func TestIssueWithoutKey(t *testing.T) {
	iss := &Issuer{issuer: "x", ttl: time.Minute, now: time.Now}
	if _, _, err := iss.Issue("u", "e"); !errors.Is(err, ErrKeyNotInitialized) {
		t.Errorf("expected ErrKeyNotInitialized, got %v", err)
	}
}

func TestKeyPEMRoundTrip(t *testing.T) {
	key, _ := GenerateKey()
	data, err := MarshalPrivateKeyPEM(key)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadKeyFile(path)
	if err != nil {
		t.Fatalf("LoadKeyFile: %v", err)
	}
	if !loaded.PublicKey.Equal(key.PublicKey) {
		t.Error("loaded key does not match")
	}

	if _, err := ParsePrivateKeyPEM([]byte("junk")); err == nil {
		t.Error("expected error for junk PEM")
	}
}
