package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSessionDefaults(t *testing.T) {
	userID := uuid.New()
	before := time.Now().UTC()

	sess, err := New(userID, "digest")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if sess.ID.Version() != 7 {
		t.Fatalf("expected UUIDv7 id, got version %d", sess.ID.Version())
	}
	if sess.UserID != userID {
		t.Fatal("user id mismatch")
	}
	if sess.Expired() {
		t.Fatal("fresh session must not be expired")
	}
	if got := sess.ExpiresAt.Sub(before); got < DefaultLifetime-time.Minute || got > DefaultLifetime+time.Minute {
		t.Fatalf("expiry not about %v from now: %v", DefaultLifetime, got)
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := New(uuid.New(), "digest")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != sess.UserID || got.TokenDigest != sess.TokenDigest {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	sess.ExpiresAt = sess.ExpiresAt.Add(time.Hour)
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetByID(ctx, sess.ID)
	if !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatal("update must persist the new expiry")
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	// Deleting again is not an error.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	store := NewMemoryStore()

	sess, _ := New(uuid.New(), "digest")
	if err := store.Update(context.Background(), sess); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreDeleteAllForUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	target := uuid.New()
	other := uuid.New()

	for _, userID := range []uuid.UUID{target, target, other} {
		sess, _ := New(userID, "digest")
		if err := store.Create(ctx, sess); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := store.DeleteAllForUser(ctx, target); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session left, got %d", store.Len())
	}
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live, _ := New(uuid.New(), "digest")
	if err := store.Create(ctx, live); err != nil {
		t.Fatalf("create: %v", err)
	}

	expired, _ := New(uuid.New(), "digest")
	expired.ExpiresAt = time.Now().UTC().Add(-time.Second)
	if err := store.Create(ctx, expired); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Fatalf("expected 1 deleted / 1 left, got %d / %d", n, store.Len())
	}
}

func TestMemoryStoreActiveCounts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	for _, userID := range []uuid.UUID{alice, alice, bob} {
		sess, _ := New(userID, "digest")
		if err := store.Create(ctx, sess); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// An expired session must not count.
	stale, _ := New(bob, "digest")
	stale.ExpiresAt = time.Now().UTC().Add(-time.Second)
	if err := store.Create(ctx, stale); err != nil {
		t.Fatalf("create: %v", err)
	}

	counts, err := store.ActiveCounts(ctx)
	if err != nil {
		t.Fatalf("active counts: %v", err)
	}
	if counts[alice] != 2 || counts[bob] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}
