package auth

import (
	"context"
	"sync"
)

// Gate is the access state machine gating every ledger mutation.
// It starts in view-only mode and transitions to editor mode only after
// the configured authority accepts a credential. This is the sole
// authorization boundary in the system; there are no per-operation or
// per-participant permissions.
type Gate struct {
	authority Authority

	mu       sync.Mutex
	editor   bool
	identity string
}

// NewGate creates a Gate in view-only mode.
func NewGate(authority Authority) *Gate {
	return &Gate{authority: authority}
}

// Authenticate validates the credential against the authority.
// On success the gate transitions to editor mode and remembers the
// canonical identity; on failure it stays in view-only mode.
func (g *Gate) Authenticate(ctx context.Context, credential string) (string, error) {
	identity, err := g.authority.Authenticate(ctx, credential)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.editor = true
	g.identity = identity
	g.mu.Unlock()

	return identity, nil
}

// Deauthenticate unconditionally returns the gate to view-only mode.
func (g *Gate) Deauthenticate() {
	g.mu.Lock()
	g.editor = false
	g.identity = ""
	g.mu.Unlock()
}

// CanMutate reports whether the gate is in editor mode.
func (g *Gate) CanMutate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.editor
}

// Identity returns the authenticated editor identity, or the empty string
// in view-only mode.
func (g *Gate) Identity() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.identity
}
