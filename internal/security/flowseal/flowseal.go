// Package flowseal seals the OAuth parameters captured at flow start into
// an opaque browser cookie value, so the callback can recover them without
// trusting the client.
package flowseal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyLength   = 32
	nonceLength = 24
)

var (
	// ErrInvalidToken marks a token that is missing, truncated, or fails
	// authentication. Treated as input malformation by the callback.
	ErrInvalidToken = errors.New("invalid flow token")
)

// Sealer encrypts and authenticates flow state with a fixed master key.
type Sealer struct {
	key [keyLength]byte
}

// New builds a Sealer from a base64-encoded 32-byte master key. Generate
// one with: openssl rand -base64 32
func New(keyB64 string) (*Sealer, error) {
	raw, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("decode flow master key: %w", err)
	}
	if len(raw) != keyLength {
		return nil, fmt.Errorf("flow master key must decode to %d bytes, got %d", keyLength, len(raw))
	}
	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal marshals v and returns base64url(nonce|box).
func (s *Sealer) Seal(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	box := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open decodes a sealed token into v.
func (s *Sealer) Open(token string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(raw) < nonceLength+secretbox.Overhead {
		return fmt.Errorf("%w: truncated", ErrInvalidToken)
	}

	var nonce [nonceLength]byte
	copy(nonce[:], raw[:nonceLength])

	plain, ok := secretbox.Open(nil, raw[nonceLength:], &nonce, &s.key)
	if !ok {
		return fmt.Errorf("%w: authentication failed", ErrInvalidToken)
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
