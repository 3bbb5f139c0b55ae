package auth

import "errors"

var (
	// ErrInvalidCredentials covers bad username and bad password alike;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned for a disabled account regardless of
	// whether the presented credentials were otherwise valid.
	ErrAccountLocked = errors.New("account locked")

	// ErrUnauthorized covers missing, malformed, expired, and mismatched
	// session tokens without distinguishing between them.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means a valid identity lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTokenFormat is a decode failure. It maps to ErrUnauthorized
	// at the HTTP boundary.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
)
