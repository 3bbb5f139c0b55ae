package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Handlers exposes the authentication endpoints: login, logout, me, and
// the admin-only session summary.
type Handlers struct {
	service *Service
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewHandlers builds the endpoint set. limiter may be nil to disable
// login rate limiting.
func NewHandlers(service *Service, limiter *RateLimiter, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{service: service, limiter: limiter, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login processes a username/password login, sets the session cookie,
// and returns the profile.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if h.limiter != nil && !h.limiter.Allow(strings.ToLower(req.Username)) {
		respondError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	identity, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	http.SetCookie(w, NewSessionCookie(identity.Token, identity.Session.ExpiresAt))
	respondJSON(w, http.StatusOK, identity.Profile)
}

// Logout deletes the current session and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, err := RequireIdentity(r.Context())
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), identity.Session.ID); err != nil {
		h.respondAuthError(w, err)
		return
	}

	http.SetCookie(w, ExpiredSessionCookie())
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated profile. The middleware already refreshed
// the session and stages the updated cookie.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := RequireIdentity(r.Context())
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, identity.Profile)
}

// Sessions returns per-account active session counts. Administrators only.
func (h *Handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	if _, err := RequireAdmin(r.Context()); err != nil {
		h.respondAuthError(w, err)
		return
	}

	summaries, err := h.service.SessionSummaries(r.Context())
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}

// respondAuthError maps the error taxonomy to status codes. Client-facing
// messages stay generic: nothing may reveal whether a username exists,
// why credentials failed, or why a token was rejected.
func (h *Handlers) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountLocked):
		respondError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidTokenFormat):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrForbidden):
		respondError(w, http.StatusForbidden, "insufficient permissions")
	default:
		h.logger.Error("internal auth error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
