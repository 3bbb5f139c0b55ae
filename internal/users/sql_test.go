package users

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/platewise/internal/database"
)

// newTestSQLStore connects to the database named by PLATEWISE_TEST_DB_DSN
// (driver from PLATEWISE_TEST_DB_DRIVER, default postgres) or skips.
func newTestSQLStore(t *testing.T) (*SQLStore, *database.DB) {
	t.Helper()

	dsn := os.Getenv("PLATEWISE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("PLATEWISE_TEST_DB_DSN not set")
	}
	driver := os.Getenv("PLATEWISE_TEST_DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	db, err := database.Open(driver, dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLStore(db)
	if err != nil {
		t.Fatalf("new sql store: %v", err)
	}
	return store, db
}

func insertTestUser(t *testing.T, db *database.DB, username string) *User {
	t.Helper()

	u := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		UpdatedAt:    time.Now().UTC(),
	}
	query := db.Rebind(`INSERT INTO users (id, username, password_hash, failed_login_attempts, is_disabled, updated_at)
		VALUES (?, ?, ?, 0, FALSE, ?)`)
	if _, err := db.Exec(query, u.ID.String(), u.Username, u.PasswordHash, u.UpdatedAt); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() {
		del := db.Rebind(`DELETE FROM users WHERE id = ?`)
		_, _ = db.Exec(del, u.ID.String())
	})
	return u
}

func TestSQLStoreLookupCaseInsensitive(t *testing.T) {
	store, db := newTestSQLStore(t)
	ctx := context.Background()

	u := insertTestUser(t, db, "Casey-"+uuid.NewString()[:8])

	got, err := store.GetByUsername(ctx, "casey-"+u.Username[6:])
	if err != nil {
		t.Fatalf("lookup must be case-insensitive: %v", err)
	}
	if got.ID != u.ID {
		t.Fatal("wrong user returned")
	}
}

func TestSQLStoreGetMissing(t *testing.T) {
	store, _ := newTestSQLStore(t)
	ctx := context.Background()

	if _, err := store.GetByUsername(ctx, "no-such-user-"+uuid.NewString()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSQLStoreUpdate(t *testing.T) {
	store, db := newTestSQLStore(t)
	ctx := context.Background()

	u := insertTestUser(t, db, "update-"+uuid.NewString()[:8])

	now := time.Now().UTC().Truncate(time.Second)
	u.FailedLoginAttempts = 4
	u.LastFailedLoginAttempt = &now
	u.Disabled = true
	u.UpdatedAt = now
	if err := store.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FailedLoginAttempts != 4 || !got.Disabled || got.LastFailedLoginAttempt == nil {
		t.Fatalf("update not persisted: %+v", got)
	}

	stranger := &User{ID: uuid.New(), Username: "ghost", UpdatedAt: now}
	if err := store.Update(ctx, stranger); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
