package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Goofygiraffe06/signup/internal/models"
	"github.com/Goofygiraffe06/signup/store"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testAccount(uid, email string) models.Account {
	return models.Account{UID: uid, Email: email, PasswordHash: "$2a$10$hash"}
}

func TestAddAccount(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		account models.Account
		wantErr error
		anyErr  bool
	}{
		{name: "valid account", account: testAccount("u1", "a@example.com")},
		{name: "duplicate email", account: testAccount("u2", "a@example.com"), wantErr: store.ErrAccountExists},
		{name: "duplicate uid", account: testAccount("u1", "b@example.com"), wantErr: store.ErrAccountExists},
		{name: "empty email", account: testAccount("u3", ""), anyErr: true},
		{name: "empty hash", account: models.Account{UID: "u4", Email: "c@example.com"}, anyErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.AddAccount(ctx, tc.account)
			switch {
			case tc.wantErr != nil:
				if err != tc.wantErr {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
			case tc.anyErr:
				if err == nil {
					t.Error("expected an error")
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	acc := testAccount("uid-9", "get@example.com")
	acc.CreatedAt = created
	if err := s.AddAccount(ctx, acc); err != nil {
		t.Fatalf("AddAccount: %v", err)
	}

	got, ok := s.GetByEmail(ctx, "get@example.com")
	if !ok {
		t.Fatal("expected account by email")
	}
	if got.UID != "uid-9" || got.EmailVerified || got.DisplayName != "" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected account: %+v", got)
	}

	if _, ok := s.GetByUID(ctx, "uid-9"); !ok {
		t.Error("expected account by uid")
	}
	if found, err := s.Exists(ctx, "get@example.com"); err != nil || !found {
		t.Errorf("Exists(get@example.com) = %v, %v", found, err)
	}
	if found, err := s.Exists(ctx, "missing@example.com"); err != nil || found {
		t.Errorf("Exists(missing@example.com) = %v, %v", found, err)
	}
}

func TestExistsReportsLookupFailure(t *testing.T) {
	s := setupTestDB(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	found, err := s.Exists(context.Background(), "any@example.com")
	if err == nil {
		t.Fatal("expected an error from a closed database")
	}
	if found {
		t.Error("a failed lookup must not report an account")
	}
}

func TestUpdates(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	_ = s.AddAccount(ctx, testAccount("uid-1", "upd@example.com"))

	if err := s.SetDisplayName(ctx, "uid-1", "Jane Doe"); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if err := s.MarkVerified(ctx, "uid-1"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}

	got, _ := s.GetByUID(ctx, "uid-1")
	if got.DisplayName != "Jane Doe" || !got.EmailVerified {
		t.Errorf("updates not applied: %+v", got)
	}

	if err := s.SetDisplayName(ctx, "ghost", "x"); err != store.ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if err := s.MarkVerified(ctx, "ghost"); err != store.ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
