package auth

import (
	"context"
	"strings"
	"sync"
)

// EditorStore defines the interface for allow-list persistence.
// This allows the authority to be independent of the storage implementation.
type EditorStore interface {
	LoadEditors(ctx context.Context) ([]string, error)
	SaveEditors(ctx context.Context, editors []string) error
}

// AllowlistAuthority grants editor access to a configured set of verified
// identities (typically email addresses supplied by an external sign-in
// flow). Identities are compared lower-cased.
type AllowlistAuthority struct {
	mu      sync.Mutex
	store   EditorStore
	editors []string
	members map[string]bool
}

// NewAllowlistAuthority creates an authority seeded with the given
// identities. Call Load to merge in identities persisted by the store.
func NewAllowlistAuthority(store EditorStore, seed []string) *AllowlistAuthority {
	a := &AllowlistAuthority{
		store:   store,
		members: make(map[string]bool),
	}
	for _, identity := range seed {
		a.add(identity)
	}
	return a
}

// Load merges identities from the store into the allow-list.
// Seeded identities stay authorized even if absent from the store.
func (a *AllowlistAuthority) Load(ctx context.Context) error {
	stored, err := a.store.LoadEditors(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, identity := range stored {
		a.add(identity)
	}
	return nil
}

// Authenticate succeeds iff the lower-cased identity is on the allow-list.
func (a *AllowlistAuthority) Authenticate(ctx context.Context, credential string) (string, error) {
	identity := canonical(credential)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.members[identity] {
		return "", ErrRejected
	}
	return identity, nil
}

// AddEditor authorizes a new identity and persists the grown allow-list.
// Empty or already-present identities are silent no-ops; authorization to
// call this at all is the caller's responsibility.
func (a *AllowlistAuthority) AddEditor(ctx context.Context, identity string) error {
	a.mu.Lock()
	if !a.add(identity) {
		a.mu.Unlock()
		return nil
	}
	snapshot := make([]string, len(a.editors))
	copy(snapshot, a.editors)
	a.mu.Unlock()

	return a.store.SaveEditors(ctx, snapshot)
}

// Editors returns the authorized identities in insertion order.
func (a *AllowlistAuthority) Editors() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.editors))
	copy(out, a.editors)
	return out
}

// add inserts a canonicalized identity, reporting whether the list grew.
// Callers must hold a.mu (construction excepted).
func (a *AllowlistAuthority) add(identity string) bool {
	identity = canonical(identity)
	if identity == "" || a.members[identity] {
		return false
	}
	a.members[identity] = true
	a.editors = append(a.editors, identity)
	return true
}

func canonical(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
