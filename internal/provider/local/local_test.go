package local_test

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Goofygiraffe06/signup/internal/auth"
	"github.com/Goofygiraffe06/signup/internal/mail"
	"github.com/Goofygiraffe06/signup/internal/manager"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/provider/local"
	"github.com/Goofygiraffe06/signup/store"
	"github.com/Goofygiraffe06/signup/store/ephemeral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) last() *mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type fixture struct {
	provider *local.Provider
	accounts *store.SQLiteStore
	pending  *ephemeral.TTLStore
	mailer   *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { accounts.Close() })

	pending := ephemeral.NewTTLStore()
	t.Cleanup(pending.Close)

	workers := manager.NewWorkManager(manager.WithDBWorkers(1), manager.WithCryptoWorkers(1), manager.WithMailWorkers(1))
	t.Cleanup(workers.Close)

	key, err := auth.GenerateKey()
	require.NoError(t, err)

	mailer := &fakeMailer{}
	p := local.New(local.Config{
		Accounts:   accounts,
		Pending:    pending,
		Workers:    workers,
		Mailer:     mailer,
		Tokens:     auth.NewIssuer(key, "signup-test", time.Hour),
		From:       "noreply@example.test",
		BaseURL:    "https://app.example.test",
		BcryptCost: bcrypt.MinCost,
	})
	return &fixture{provider: p, accounts: accounts, pending: pending, mailer: mailer}
}

func tokenFromLink(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\r\n") {
		if strings.HasPrefix(line, "https://app.example.test/verify?") {
			u, err := url.Parse(line)
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatalf("no verification link in %q", body)
	return ""
}

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.provider.CreateAccount(ctx, "  Jane@Example.Test ", "Secret12")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.test", id.Email)
	assert.NotEmpty(t, id.UID)

	acc, ok := f.accounts.GetByUID(ctx, id.UID)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("Secret12")))
	assert.False(t, acc.EmailVerified)
}

func TestCreateAccountErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.CreateAccount(ctx, "taken@example.test", "Secret12")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		sentinel error
		message  string
	}{
		{"duplicate email", "TAKEN@example.test", "Other123", provider.ErrEmailExists, local.MsgEmailExists},
		{"malformed email", "not-an-email", "Secret12", provider.ErrInvalidEmail, local.MsgInvalidEmail},
		{"short password", "new@example.test", "Ab12", provider.ErrWeakPassword, local.MsgWeakPassword},
		{"long password", "new@example.test", "A1" + strings.Repeat("x", 80), provider.ErrWeakPassword, local.MsgLongPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.provider.CreateAccount(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, provider.Message(err))
		})
	}
}

func TestCreateAccountLookupFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accounts.Close())

	_, err := f.provider.CreateAccount(context.Background(), "jane@example.test", "Secret12")
	require.Error(t, err)

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "auth/internal-error", perr.Code)
	assert.Equal(t, local.MsgInternal, provider.Message(err))
	assert.NotErrorIs(t, err, provider.ErrEmailExists)
}

func TestSendVerificationAndVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.provider.CreateAccount(ctx, "verify@example.test", "Secret12")
	require.NoError(t, err)
	require.NoError(t, f.provider.SendVerification(ctx, id))

	msg := f.mailer.last()
	require.NotNil(t, msg)
	assert.Equal(t, "verify@example.test", msg.To)
	assert.Equal(t, 1, f.pending.Len())

	token := tokenFromLink(t, msg.Body)
	email, err := f.provider.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "verify@example.test", email)

	acc, _ := f.accounts.GetByUID(ctx, id.UID)
	assert.True(t, acc.EmailVerified)

	_, err = f.provider.Verify(ctx, token)
	assert.ErrorIs(t, err, local.ErrTokenUsed, "links are single use")
}

func TestVerifyRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.provider.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSendVerificationMailFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.provider.CreateAccount(ctx, "fail@example.test", "Secret12")
	require.NoError(t, err)

	f.mailer.err = errors.New("relay down")
	err = f.provider.SendVerification(ctx, id)
	assert.EqualError(t, err, "relay down")
	assert.Equal(t, 0, f.pending.Len(), "unsent token must not stay pending")
}

func TestSetDisplayName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.provider.CreateAccount(ctx, "name@example.test", "Secret12")
	require.NoError(t, err)

	require.NoError(t, f.provider.SetDisplayName(ctx, id, "Jane Doe"))
	acc, _ := f.accounts.GetByUID(ctx, id.UID)
	assert.Equal(t, "Jane Doe", acc.DisplayName)

	err = f.provider.SetDisplayName(ctx, provider.Identity{UID: "ghost"}, "x")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	assert.Equal(t, local.MsgNotFound, provider.Message(err))
}
