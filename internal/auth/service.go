// Package auth implements the authentication and session-management core:
// credential hashing, opaque session tokens, login/logout/refresh with
// account lockout, the per-request authorization middleware, and the
// expired-session sweeper.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platewise/platewise/internal/metrics"
	"github.com/platewise/platewise/internal/session"
	"github.com/platewise/platewise/internal/telemetry"
	"github.com/platewise/platewise/internal/users"
)

// maxFailedLoginAttempts is the lockout threshold. Reaching it disables
// the account and revokes every session it owns; only an administrative
// reset re-enables it.
const maxFailedLoginAttempts = 5

// Profile is the client-visible view of an account.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Roles     []string   `json:"roles"`
}

// Identity is the request-scoped authenticated identity: profile, live
// session, and the encoded raw token to hand back to the client. It is
// built fresh on every request and never cached beyond it.
type Identity struct {
	Profile Profile
	Session session.Session

	// Token is the encoded "<session-id>:<raw-secret>" cookie value. The
	// raw secret only exists here and in the client's cookie.
	Token string
}

// IsAdmin reports whether the identity carries the administrator role.
func (id *Identity) IsAdmin() bool {
	for _, r := range id.Profile.Roles {
		if r == users.RoleAdministrator {
			return true
		}
	}
	return false
}

// Service implements login, logout, and refresh against the user, role,
// and session stores. The HMAC key is immutable for the process lifetime.
type Service struct {
	users    users.Store
	roles    users.RoleStore
	sessions session.Store
	hmacKey  []byte
	logger   *zap.Logger

	// decoyHash burns a comparable amount of CPU when the username does
	// not exist, so unknown-user and wrong-password failures take similar
	// time.
	decoyHash string
}

// NewService wires the authentication service. hmacKey must be non-empty;
// key loading and validation happen at startup in config.
func NewService(userStore users.Store, roleStore users.RoleStore, sessionStore session.Store, hmacKey []byte, logger *zap.Logger) (*Service, error) {
	if len(hmacKey) == 0 {
		return nil, errors.New("auth: HMAC key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	decoy, err := NewSessionToken(uuid.Nil)
	if err != nil {
		return nil, err
	}
	decoyHash, err := HashPassword(decoy.RawSecret)
	if err != nil {
		return nil, fmt.Errorf("auth: prepare decoy hash: %w", err)
	}

	return &Service{
		users:     userStore,
		roles:     roleStore,
		sessions:  sessionStore,
		hmacKey:   hmacKey,
		logger:    logger,
		decoyHash: decoyHash,
	}, nil
}

// Login checks credentials and mints a new session. Unknown usernames and
// wrong passwords both come back as ErrInvalidCredentials; a disabled
// account comes back as ErrAccountLocked no matter what was typed.
func (s *Service) Login(ctx context.Context, username, password string) (*Identity, error) {
	ctx, span := telemetry.StartLoginSpan(ctx)

	identity, err := s.login(ctx, username, password)
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultSuccess)
	case errors.Is(err, ErrAccountLocked):
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultLocked).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultLocked)
	case errors.Is(err, ErrInvalidCredentials):
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultInvalid)
	default:
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultError)
	}
	return identity, err
}

func (s *Service) login(ctx context.Context, username, password string) (*Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// Burn a hash verification so unknown usernames cost the same
			// as known ones.
			VerifyPassword(s.decoyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	valid := VerifyPassword(user.PasswordHash, password)

	if user.Disabled {
		return nil, ErrAccountLocked
	}

	now := time.Now().UTC()

	if !valid {
		user.FailedLoginAttempts++
		user.LastFailedLoginAttempt = &now
		user.UpdatedAt = now

		if user.FailedLoginAttempts >= maxFailedLoginAttempts {
			user.Disabled = true
			if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("revoke sessions on lockout: %w", err)
			}
		}

		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}

		if user.Disabled {
			s.logger.Warn("account locked after repeated failed logins",
				zap.String("user_id", user.ID.String()))
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLoginAttempt = nil
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	token, err := NewSessionToken(sessionID)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		ID:          sessionID,
		UserID:      user.ID,
		TokenDigest: token.Digest(s.hmacKey),
		CreatedAt:   now,
		ExpiresAt:   now.Add(session.DefaultLifetime),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return s.assembleIdentity(ctx, user, sess, token)
}

// Logout deletes the session. Deleting an already-absent session is not
// an error.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Refresh validates a session token and extends the session's expiry by
// the full lifetime (sliding window). Every token-shaped failure is
// ErrUnauthorized; a disabled owner is ErrAccountLocked.
func (s *Service) Refresh(ctx context.Context, token SessionToken) (*Identity, error) {
	ctx, span := telemetry.StartRefreshSpan(ctx)

	identity, err := s.refresh(ctx, token)
	if err == nil {
		metrics.SessionRefreshesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultSuccess)
	} else {
		metrics.SessionRefreshesTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		telemetry.EndAuthSpan(span, metrics.ResultInvalid)
	}
	return identity, err
}

func (s *Service) refresh(ctx context.Context, token SessionToken) (*Identity, error) {
	sess, err := s.sessions.GetByID(ctx, token.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if !VerifySecret(token.RawSecret, sess.TokenDigest, s.hmacKey) {
		return nil, ErrUnauthorized
	}

	if sess.Expired() {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user.Disabled {
		return nil, ErrAccountLocked
	}

	// The secret never rotates on refresh, only the expiry slides.
	sess.ExpiresAt = time.Now().UTC().Add(session.DefaultLifetime)
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}

	return s.assembleIdentity(ctx, user, sess, token)
}

// SessionSummaries reports active session counts per account.
func (s *Service) SessionSummaries(ctx context.Context) ([]session.Summary, error) {
	counts, err := s.sessions.ActiveCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	summaries := make([]session.Summary, 0, len(counts))
	for userID, n := range counts {
		summaries = append(summaries, session.Summary{UserID: userID, ActiveSessions: n})
	}
	return summaries, nil
}

func (s *Service) assembleIdentity(ctx context.Context, user *users.User, sess *session.Session, token SessionToken) (*Identity, error) {
	roles, err := s.roles.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}

	return &Identity{
		Profile: Profile{
			ID:        user.ID,
			Username:  user.Username,
			LastLogin: user.LastLogin,
			Roles:     names,
		},
		Session: *sess,
		Token:   token.Encode(),
	}, nil
}
