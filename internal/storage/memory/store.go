// Package memory provides an in-memory implementation of storage.Store.
// It is used by tests and as a fallback when no database path is configured;
// contents do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/tallyapp/tally/internal/models"
	"github.com/tallyapp/tally/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore holds the persisted collections in process memory.
// Safe for concurrent use.
type MemoryStore struct {
	mu           sync.Mutex
	participants []models.Participant
	editors      []string
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{}
}

// LoadParticipants returns a deep copy of the stored collection so callers
// cannot mutate internal state.
func (m *MemoryStore) LoadParticipants(ctx context.Context) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Participant, len(m.participants))
	for i := range m.participants {
		out[i] = m.participants[i].Clone()
	}
	return out, nil
}

// SaveParticipants replaces the stored collection with a deep copy of the
// given one.
func (m *MemoryStore) SaveParticipants(ctx context.Context, participants []models.Participant) error {
	copied := make([]models.Participant, len(participants))
	for i := range participants {
		copied[i] = participants[i].Clone()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants = copied
	return nil
}

// LoadEditors returns a copy of the stored editor identities.
func (m *MemoryStore) LoadEditors(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.editors))
	copy(out, m.editors)
	return out, nil
}

// SaveEditors replaces the stored editor identities.
func (m *MemoryStore) SaveEditors(ctx context.Context, editors []string) error {
	copied := make([]string, len(editors))
	copy(copied, editors)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.editors = copied
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
