package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/platewise/internal/database"
)

// SQLStore persists users and role grants in SQL. It implements both
// Store and RoleStore.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore opens the user store and migrates schema.
func NewSQLStore(db *database.DB) (*SQLStore, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                        VARCHAR(36) PRIMARY KEY,
			username                  VARCHAR(255) NOT NULL UNIQUE,
			password_hash             VARCHAR(255) NOT NULL,
			last_login                TIMESTAMP NULL,
			failed_login_attempts     INTEGER NOT NULL DEFAULT 0,
			last_failed_login_attempt TIMESTAMP NULL,
			is_disabled               BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at                TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id   VARCHAR(36) PRIMARY KEY,
			name VARCHAR(64) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id VARCHAR(36) NOT NULL,
			role_id VARCHAR(36) NOT NULL,
			PRIMARY KEY (user_id, role_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("migrate users schema: %w", err)
		}
	}

	return &SQLStore{db: db}, nil
}

const userColumns = `id, username, password_hash, last_login, failed_login_attempts, last_failed_login_attempt, is_disabled, updated_at`

// GetByUsername fetches a user by username, case-insensitively.
func (s *SQLStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER(?)`)
	return s.queryOne(ctx, query, username)
}

// GetByID fetches a user by id.
func (s *SQLStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.queryOne(ctx, query, id.String())
}

// Update persists login bookkeeping fields for an existing user.
func (s *SQLStore) Update(ctx context.Context, user *User) error {
	query := s.db.Rebind(`UPDATE users
		SET last_login = ?, failed_login_attempts = ?, last_failed_login_attempt = ?, is_disabled = ?, updated_at = ?
		WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, query,
		nullTime(user.LastLogin),
		user.FailedLoginAttempts,
		nullTime(user.LastFailedLoginAttempt),
		user.Disabled,
		user.UpdatedAt,
		user.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RolesForUser returns the roles granted to a user, empty when none.
func (s *SQLStore) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	query := s.db.Rebind(`SELECT r.id, r.name
		FROM roles r
		INNER JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?`)

	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0)
	for rows.Next() {
		var (
			idStr string
			role  Role
		)
		if err := rows.Scan(&idStr, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse role id: %w", err)
		}
		role.Name = NormalizeRoleName(role.Name)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles rows: %w", err)
	}

	return roles, nil
}

func (s *SQLStore) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	var (
		u          User
		idStr      string
		lastLogin  sql.NullTime
		lastFailed sql.NullTime
	)
	err := row.Scan(&idStr, &u.Username, &u.PasswordHash, &lastLogin, &u.FailedLoginAttempts, &lastFailed, &u.Disabled, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	if lastFailed.Valid {
		t := lastFailed.Time
		u.LastFailedLoginAttempt = &t
	}

	return &u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
