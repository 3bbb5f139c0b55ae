// Package session defines the session record and the store contract the
// authentication core consumes. Only a keyed digest of the session secret
// is ever persisted; the raw secret lives in the client's cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultLifetime is the sliding-window session lifetime. Every
// successful refresh extends expiry by this much from now.
const DefaultLifetime = 2 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// Session is a persisted login session. IDs are UUIDv7 so creation order
// is recoverable from the identifier alone.
type Session struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	TokenDigest string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// New builds a session for userID expiring DefaultLifetime from now.
func New(userID uuid.UUID, tokenDigest string) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Session{
		ID:          id,
		UserID:      userID,
		TokenDigest: tokenDigest,
		CreatedAt:   now,
		ExpiresAt:   now.Add(DefaultLifetime),
	}, nil
}

// Expired reports whether the session's expiry has passed. An expired
// session must be treated as nonexistent regardless of physical presence.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Summary is an aggregate of live sessions per account.
type Summary struct {
	UserID         uuid.UUID `json:"user_id"`
	ActiveSessions int       `json:"active_sessions"`
}

// Store is the session persistence contract.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all expired sessions and returns the count.
	DeleteExpired(ctx context.Context) (int, error)

	// ActiveCounts returns the number of unexpired sessions per user.
	ActiveCounts(ctx context.Context) (map[uuid.UUID]int, error)
}
