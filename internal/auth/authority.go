// Package auth implements the access gate that separates view-only users
// from the editor role, plus the pluggable authorities that decide whether
// a presented credential grants editor access.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrRejected indicates the presented credential does not grant
	// editor access.
	ErrRejected = errors.New("credential rejected")

	// ErrInvalidToken indicates a malformed or expired session token.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingToken indicates no session token was presented.
	ErrMissingToken = errors.New("authorization token required")
)

// Authority decides whether a credential grants editor access.
// This abstraction allows swapping between auth strategies (shared secret,
// identity allow-list, third-party sign-in) without changing the gate or
// the service layer.
type Authority interface {
	// Authenticate validates the credential and returns the canonical
	// editor identity it maps to. Returns ErrRejected on failure.
	Authenticate(ctx context.Context, credential string) (string, error)
}
