package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SecretAuthority grants editor access to anyone presenting the single
// configured shared secret. The secret is bcrypt-hashed at construction so
// the plaintext never lingers in process memory longer than necessary.
type SecretAuthority struct {
	hash []byte
}

// NewSecretAuthority creates an authority for the given shared secret.
func NewSecretAuthority(secret string) (*SecretAuthority, error) {
	if secret == "" {
		return nil, fmt.Errorf("shared secret must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}
	return &SecretAuthority{hash: hash}, nil
}

// Authenticate succeeds iff the credential equals the configured secret.
// The shared-secret strategy has no per-user identity, so the canonical
// identity is simply "editor".
func (a *SecretAuthority) Authenticate(ctx context.Context, credential string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrRejected
	}
	return "editor", nil
}
