package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		uid TEXT PRIMARY KEY NOT NULL CHECK(uid <> ''),
		email TEXT UNIQUE NOT NULL CHECK(email <> ''),
		password_hash TEXT NOT NULL CHECK(password_hash <> ''),
		display_name TEXT NOT NULL DEFAULT '',
		email_verified INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddAccount(ctx context.Context, acc models.Account) error {
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (uid, email, password_hash, display_name, email_verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		acc.UID, acc.Email, acc.PasswordHash, acc.DisplayName, acc.EmailVerified, acc.CreatedAt.Unix())
	if err != nil {
		// Handle unique constraint violation gracefully
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (models.Account, bool) {
	return s.getOne(ctx, "email", email)
}

func (s *SQLiteStore) GetByUID(ctx context.Context, uid string) (models.Account, bool) {
	return s.getOne(ctx, "uid", uid)
}

func (s *SQLiteStore) getOne(ctx context.Context, column, value string) (models.Account, bool) {
	var (
		acc     models.Account
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, display_name, email_verified, created_at
		FROM accounts
		WHERE `+column+` = ?`, value).
		Scan(&acc.UID, &acc.Email, &acc.PasswordHash, &acc.DisplayName, &acc.EmailVerified, &created)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.ErrorLog("store.getOne(%s) error: %v", column, err)
		}
		return models.Account{}, false
	}
	acc.CreatedAt = time.Unix(created, 0).UTC()
	return acc, true
}

// Exists reports whether an account uses email. Lookup failures are returned
// rather than treated as absence.
func (s *SQLiteStore) Exists(ctx context.Context, email string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE email = ?`, email).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("store: lookup account: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) SetDisplayName(ctx context.Context, uid, name string) error {
	return s.updateOne(ctx, `UPDATE accounts SET display_name = ? WHERE uid = ?`, name, uid)
}

func (s *SQLiteStore) MarkVerified(ctx context.Context, uid string) error {
	return s.updateOne(ctx, `UPDATE accounts SET email_verified = 1 WHERE uid = ?`, uid)
}

func (s *SQLiteStore) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
