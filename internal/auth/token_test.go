package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseSessionTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := NewSessionToken(id)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	if len(token.RawSecret) != 64 {
		t.Fatalf("expected 32 random bytes hex-encoded, got %d chars", len(token.RawSecret))
	}

	parsed, err := ParseSessionToken(token.Encode())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.SessionID != id {
		t.Fatalf("session id mismatch: %s != %s", parsed.SessionID, id)
	}
	if parsed.RawSecret != token.RawSecret {
		t.Fatal("raw secret mismatch after round trip")
	}
}

func TestParseSessionTokenRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no colon":     "abcdef123456",
		"bad uuid":     "not-a-uuid:abcdef",
		"empty secret": uuid.NewString() + ":",
		"empty id":     ":abcdef",
		"colon only":   ":",
	}

	for name, value := range cases {
		if _, err := ParseSessionToken(value); !errors.Is(err, ErrInvalidTokenFormat) {
			t.Fatalf("%s: expected ErrInvalidTokenFormat, got %v", name, err)
		}
	}
}

func TestParseSessionTokenSecretMayContainColon(t *testing.T) {
	id := uuid.New()
	parsed, err := ParseSessionToken(id.String() + ":abc:def")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.RawSecret != "abc:def" {
		t.Fatalf("expected split on first colon only, got %q", parsed.RawSecret)
	}
}

func TestDigestRoundTrip(t *testing.T) {
	key := []byte("test_key_32_bytes_long_exactly!!")

	token, err := NewSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	digest := token.Digest(key)
	if !VerifySecret(token.RawSecret, digest, key) {
		t.Fatal("digest must verify its own secret")
	}

	other, err := NewSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if VerifySecret(other.RawSecret, digest, key) {
		t.Fatal("a different secret must not verify")
	}
}

func TestVerifySecretDistinguishesKeys(t *testing.T) {
	token, err := NewSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	digest := token.Digest([]byte("key-one-key-one-key-one-key-one!"))
	if VerifySecret(token.RawSecret, digest, []byte("key-two-key-two-key-two-key-two!")) {
		t.Fatal("digest under one key must not verify under another")
	}
}

func TestVerifySecretTamperedDigest(t *testing.T) {
	key := []byte("test_key_32_bytes_long_exactly!!")

	token, err := NewSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	digest := token.Digest(key)

	tampered := flipHexChar(digest)
	if VerifySecret(token.RawSecret, tampered, key) {
		t.Fatal("tampered digest must not verify")
	}

	if VerifySecret(token.RawSecret, "zz-not-hex", key) {
		t.Fatal("non-hex digest must not verify")
	}
}

func flipHexChar(s string) string {
	c := byte('0')
	if s[0] == '0' {
		c = '1'
	}
	return string(c) + s[1:]
}

func TestEncodeFormat(t *testing.T) {
	id := uuid.New()
	token := SessionToken{SessionID: id, RawSecret: "abc123"}

	if got, want := token.Encode(), id.String()+":abc123"; got != want {
		t.Fatalf("encode mismatch: %q != %q", got, want)
	}
	if !strings.Contains(token.Encode(), ":") {
		t.Fatal("encoded token must contain separator")
	}
}
