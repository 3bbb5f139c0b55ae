package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the browser cookie carrying the encoded session
// token.
const SessionCookieName = "session_id"

// NewSessionCookie builds the session cookie for an encoded token. The
// cookie expires with the session.
func NewSessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
	}
}

// ExpiredSessionCookie builds a cookie that makes the client drop its
// session token immediately.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	}
}
