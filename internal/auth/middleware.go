package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware resolves the session cookie on the way in and settles the
// cookie on the way out. A valid cookie refreshes the session (sliding
// expiry) and attaches the identity to the request context; an invalid
// one stages a clear. Handlers that set the session cookie themselves
// (login, logout) win: the staged mutation is skipped when the response
// already carries one.
type Middleware struct {
	service *Service
	logger  *zap.Logger
}

func NewMiddleware(service *Service, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{service: service, logger: logger}
}

// Wrap returns the wrapped HTTP handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			// No cookie: pass through untouched.
			next.ServeHTTP(w, r)
			return
		}

		var staged *http.Cookie

		token, err := ParseSessionToken(cookie.Value)
		if err != nil {
			// Client is holding garbage; tell it to drop the cookie.
			staged = ExpiredSessionCookie()
		} else if identity, err := m.service.Refresh(r.Context(), token); err != nil {
			staged = ExpiredSessionCookie()
		} else {
			r = r.WithContext(ContextWithIdentity(r.Context(), identity))
			staged = NewSessionCookie(identity.Token, identity.Session.ExpiresAt)
		}

		sw := &settlingWriter{ResponseWriter: w, staged: staged}
		next.ServeHTTP(sw, r)
		sw.settle()
	})
}

// settlingWriter injects the staged session cookie just before the first
// byte of the response goes out, unless the handler already issued its
// own session cookie.
type settlingWriter struct {
	http.ResponseWriter
	staged  *http.Cookie
	settled bool
}

func (w *settlingWriter) WriteHeader(code int) {
	w.settle()
	w.ResponseWriter.WriteHeader(code)
}

func (w *settlingWriter) Write(b []byte) (int, error) {
	w.settle()
	return w.ResponseWriter.Write(b)
}

func (w *settlingWriter) settle() {
	if w.settled {
		return
	}
	w.settled = true

	if w.staged == nil || w.sessionCookieSet() {
		return
	}
	http.SetCookie(w.ResponseWriter, w.staged)
}

func (w *settlingWriter) sessionCookieSet() bool {
	for _, v := range w.Header().Values("Set-Cookie") {
		if strings.HasPrefix(v, SessionCookieName+"=") {
			return true
		}
	}
	return false
}
