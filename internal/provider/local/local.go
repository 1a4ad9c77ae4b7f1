// Package local is a self-hosted identity provider: accounts in SQLite,
// bcrypt password hashes, and verification links sent over SMTP.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Goofygiraffe06/signup/internal/auth"
	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/mail"
	"github.com/Goofygiraffe06/signup/internal/manager"
	"github.com/Goofygiraffe06/signup/internal/models"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/utils"
	"github.com/Goofygiraffe06/signup/store"
	"github.com/Goofygiraffe06/signup/store/ephemeral"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Provider-facing messages.
const (
	MsgEmailExists  = "The email address is already in use by another account."
	MsgInvalidEmail = "The email address is badly formatted."
	MsgWeakPassword = "Password should be at least 6 characters."
	MsgLongPassword = "Password must be at most 72 bytes."
	MsgInternal     = "An internal error has occurred."
	MsgNotFound     = "There is no user record corresponding to this identifier."
)

const (
	minPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes and errors on it.
	maxPasswordBytes = 72

	dbTimeout     = 3 * time.Second
	cryptoTimeout = 5 * time.Second
	mailTimeout   = 15 * time.Second
)

var (
	ErrTokenUsed      = errors.New("verification link expired or already used")
	ErrAccountMissing = errors.New("account no longer exists")
)

var validate = validator.New()

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// Config holds the collaborators of a Provider.
type Config struct {
	Accounts   *store.SQLiteStore
	Pending    *ephemeral.TTLStore
	Workers    *manager.WorkManager
	Mailer     Mailer
	Tokens     *auth.Issuer
	From       string
	BaseURL    string
	BcryptCost int
}

// Provider implements provider.Provider on local infrastructure.
type Provider struct {
	cfg Config
}

var _ provider.Provider = (*Provider)(nil)

func New(cfg Config) *Provider {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (provider.Identity, error) {
	start := time.Now()
	email = utils.NormalizeEmail(email)
	emailHash := utils.HashEmail(email)

	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return provider.Identity{}, provider.NewError(provider.ErrInvalidEmail, "auth/invalid-email", MsgInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return provider.Identity{}, provider.NewError(provider.ErrWeakPassword, "auth/weak-password", MsgWeakPassword)
	}
	if len(password) > maxPasswordBytes {
		return provider.Identity{}, provider.NewError(provider.ErrWeakPassword, "auth/password-too-long", MsgLongPassword)
	}

	var exists bool
	if err := p.cfg.Workers.DoDB(ctx, dbTimeout, func(ctx context.Context) error {
		var err error
		exists, err = p.cfg.Accounts.Exists(ctx, email)
		return err
	}); err != nil {
		return provider.Identity{}, internalError("lookup", err)
	}
	if exists {
		logging.WarnLog("Create account failed: email exists [%s]", emailHash)
		return provider.Identity{}, provider.NewError(provider.ErrEmailExists, "auth/email-already-in-use", MsgEmailExists)
	}

	var hash []byte
	if err := p.cfg.Workers.DoCrypto(ctx, cryptoTimeout, func(ctx context.Context) error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
		return err
	}); err != nil {
		return provider.Identity{}, internalError("hash", err)
	}

	acc := models.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	err := p.cfg.Workers.DoDB(ctx, dbTimeout, func(ctx context.Context) error {
		return p.cfg.Accounts.AddAccount(ctx, acc)
	})
	switch {
	case errors.Is(err, store.ErrAccountExists):
		// Lost a race with a concurrent registration of the same email.
		return provider.Identity{}, provider.NewError(provider.ErrEmailExists, "auth/email-already-in-use", MsgEmailExists)
	case err != nil:
		return provider.Identity{}, internalError("insert", err)
	}

	logging.InfoLog("Account created [%s] %v", emailHash, time.Since(start))
	return provider.Identity{UID: acc.UID, Email: acc.Email}, nil
}

func (p *Provider) SendVerification(ctx context.Context, id provider.Identity) error {
	emailHash := utils.HashEmail(id.Email)

	token, tokenID, err := p.cfg.Tokens.Issue(id.UID, id.Email)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	if err := p.cfg.Pending.SetWithValue(tokenID, id.UID, p.cfg.Tokens.TTL()); err != nil {
		return fmt.Errorf("record verification token: %w", err)
	}

	link := p.cfg.BaseURL + "/verify?token=" + token
	msg := mail.NewVerificationMessage(p.cfg.From, id.Email, link)

	if err := p.cfg.Workers.DoMail(ctx, mailTimeout, func(ctx context.Context) error {
		return p.cfg.Mailer.Send(ctx, msg)
	}); err != nil {
		p.cfg.Pending.Delete(tokenID)
		return err
	}

	logging.InfoLog("Verification email queued [%s]", emailHash)
	return nil
}

func (p *Provider) SetDisplayName(ctx context.Context, id provider.Identity, name string) error {
	err := p.cfg.Workers.DoDB(ctx, dbTimeout, func(ctx context.Context) error {
		return p.cfg.Accounts.SetDisplayName(ctx, id.UID, name)
	})
	if errors.Is(err, store.ErrAccountNotFound) {
		return provider.NewError(err, "auth/user-not-found", MsgNotFound)
	}
	return err
}

// Verify consumes a verification link token and marks the account verified.
// It returns the verified email.
func (p *Provider) Verify(ctx context.Context, token string) (string, error) {
	claims, err := p.cfg.Tokens.Parse(token)
	if err != nil {
		return "", err
	}

	uid, ok := p.cfg.Pending.Take(claims.ID)
	if !ok || uid != claims.Subject {
		logging.WarnLog("Verification failed: token expired or used [%s]", utils.HashEmail(claims.Email))
		return "", ErrTokenUsed
	}

	err = p.cfg.Workers.DoDB(ctx, dbTimeout, func(ctx context.Context) error {
		return p.cfg.Accounts.MarkVerified(ctx, uid)
	})
	if errors.Is(err, store.ErrAccountNotFound) {
		return "", ErrAccountMissing
	}
	if err != nil {
		return "", err
	}

	logging.InfoLog("Email verified [%s]", utils.HashEmail(claims.Email))
	return claims.Email, nil
}

func internalError(step string, err error) error {
	logging.ErrorLog("Create account failed at %s: %v", step, err)
	return &provider.Error{Code: "auth/internal-error", Message: MsgInternal, Err: err}
}
