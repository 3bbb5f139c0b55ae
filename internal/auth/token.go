package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// rawSecretLen is the size of the random session secret in bytes before
// hex encoding.
const rawSecretLen = 32

// SessionToken is the client-held credential: a session id paired with
// the raw secret. It travels as "<uuid>:<hex-secret>" in the session
// cookie. Only a keyed digest of the secret is ever persisted.
type SessionToken struct {
	SessionID uuid.UUID
	RawSecret string
}

// NewSessionToken generates a token for sessionID with a fresh
// cryptographically random secret.
func NewSessionToken(sessionID uuid.UUID) (SessionToken, error) {
	raw := make([]byte, rawSecretLen)
	if _, err := rand.Read(raw); err != nil {
		return SessionToken{}, fmt.Errorf("generate session secret: %w", err)
	}

	return SessionToken{
		SessionID: sessionID,
		RawSecret: hex.EncodeToString(raw),
	}, nil
}

// ParseSessionToken decodes a cookie value. It fails with
// ErrInvalidTokenFormat unless the value splits on the first ':' into a
// valid UUID and a non-empty secret.
func ParseSessionToken(value string) (SessionToken, error) {
	idPart, secret, ok := strings.Cut(value, ":")
	if !ok || idPart == "" || secret == "" {
		return SessionToken{}, ErrInvalidTokenFormat
	}

	sessionID, err := uuid.Parse(idPart)
	if err != nil {
		return SessionToken{}, ErrInvalidTokenFormat
	}

	return SessionToken{SessionID: sessionID, RawSecret: secret}, nil
}

// Encode serializes the token for transport in a cookie.
func (t SessionToken) Encode() string {
	return t.SessionID.String() + ":" + t.RawSecret
}

// Digest computes the HMAC-SHA256 of the raw secret under key, hex
// encoded. This is the only form of the secret that may be persisted.
func (t SessionToken) Digest(key []byte) string {
	return digestSecret(t.RawSecret, key)
}

// VerifySecret recomputes the keyed digest of rawSecret and compares it
// to storedDigest in constant time.
func VerifySecret(rawSecret, storedDigest string, key []byte) bool {
	stored, err := hex.DecodeString(storedDigest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(rawSecret))
	return hmac.Equal(mac.Sum(nil), stored)
}

func digestSecret(rawSecret string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(rawSecret))
	return hex.EncodeToString(mac.Sum(nil))
}
