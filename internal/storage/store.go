// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tallyapp/tally/internal/models"
)

// ErrPersistence wraps any backend load/save failure so callers can treat
// storage faults uniformly regardless of the backend in use.
var ErrPersistence = errors.New("persistence failure")

// Store defines the interface for ledger persistence.
// The ledger is loaded and saved as a whole collection; the entity count is
// small (tens, not millions), so whole-collection writes on every mutation
// are acceptable. This abstraction allows swapping storage backends
// (SQLite, in-memory, etc.) without changing the ledger or service layers.
type Store interface {
	// LoadParticipants retrieves the full participant collection in
	// insertion order. An empty store yields an empty slice, not an error.
	LoadParticipants(ctx context.Context) ([]models.Participant, error)

	// SaveParticipants replaces the stored collection with the given one.
	// The write is atomic: a failed save leaves the previous contents intact.
	SaveParticipants(ctx context.Context, participants []models.Participant) error

	// LoadEditors retrieves the authorized-editor identities.
	LoadEditors(ctx context.Context) ([]string, error)

	// SaveEditors replaces the stored authorized-editor identities.
	SaveEditors(ctx context.Context, editors []string) error

	// Close releases any resources held by the store.
	Close() error
}
