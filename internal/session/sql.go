package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/platewise/internal/database"
)

// SQLStore persists sessions in SQL.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore opens the session store and migrates schema.
func NewSQLStore(db *database.DB) (*SQLStore, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id           VARCHAR(36) PRIMARY KEY,
		user_id      VARCHAR(36) NOT NULL,
		token_digest VARCHAR(64) NOT NULL,
		created_at   TIMESTAMP NOT NULL,
		expires_at   TIMESTAMP NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("migrate sessions schema: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX idx_sessions_user ON sessions (user_id)`)
	_, _ = db.Exec(`CREATE INDEX idx_sessions_expiry ON sessions (expires_at)`)

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Create(ctx context.Context, sess *Session) error {
	query := s.db.Rebind(`INSERT INTO sessions (id, user_id, token_digest, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		sess.ID.String(), sess.UserID.String(), sess.TokenDigest, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID loads a session. Expired rows are deleted lazily and reported
// as not found.
func (s *SQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := s.db.Rebind(`SELECT id, user_id, token_digest, created_at, expires_at
		FROM sessions WHERE id = ?`)

	var (
		sess           Session
		idStr, userStr string
	)
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &userStr, &sess.TokenDigest, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	if sess.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse session user id: %w", err)
	}

	if sess.Expired() {
		_ = s.Delete(ctx, sess.ID)
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

func (s *SQLStore) Update(ctx context.Context, sess *Session) error {
	query := s.db.Rebind(`UPDATE sessions SET expires_at = ? WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, query, sess.ExpiresAt, sess.ID.String())
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := s.db.Rebind(`DELETE FROM sessions WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id.String()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := s.db.Rebind(`DELETE FROM sessions WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID.String()); err != nil {
		return fmt.Errorf("delete sessions for user: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context) (int, error) {
	query := s.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`)

	res, err := s.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired rows affected: %w", err)
	}
	return int(n), nil
}

func (s *SQLStore) ActiveCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	query := s.db.Rebind(`SELECT user_id, COUNT(*) FROM sessions WHERE expires_at > ? GROUP BY user_id`)

	rows, err := s.db.QueryContext(ctx, query, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			userStr string
			n       int
		)
		if err := rows.Scan(&userStr, &n); err != nil {
			return nil, fmt.Errorf("scan session count: %w", err)
		}
		userID, err := uuid.Parse(userStr)
		if err != nil {
			return nil, fmt.Errorf("parse session user id: %w", err)
		}
		counts[userID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session count rows: %w", err)
	}

	return counts, nil
}
