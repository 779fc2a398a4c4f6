// Package ledger implements the authoritative in-memory collection of
// participants and the batch-adjustment model on top of it.
//
// The ledger itself performs no I/O on mutation: callers persist the new
// state through Save after a successful operation. This keeps the mutation
// rules testable in isolation from any storage backend.
package ledger

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tallyapp/tally/internal/models"
	"github.com/tallyapp/tally/internal/storage"
)

var (
	// ErrInvalidInput indicates an empty name or a non-finite amount.
	ErrInvalidInput = errors.New("invalid participant input")

	// ErrDuplicateName indicates the trimmed name already exists in the
	// ledger under case-insensitive comparison.
	ErrDuplicateName = errors.New("participant name already exists")

	// ErrNotFound indicates no participant carries the given ID.
	ErrNotFound = errors.New("participant not found")
)

// Ledger owns the participant collection and enforces its invariants:
// unique IDs from a monotonic counter, case-insensitively unique names,
// and append-only per-participant transaction history.
//
// All operations are safe for concurrent use; a single mutex serializes
// mutation since the intended deployment is a single operator.
type Ledger struct {
	mu           sync.Mutex
	store        storage.Store
	participants []*models.Participant
	nextID       int64
}

// New creates an empty Ledger backed by the given store.
func New(store storage.Store) *Ledger {
	return &Ledger{
		store:  store,
		nextID: 1,
	}
}

// Load replaces the in-memory collection with the stored one.
// The ID counter resumes at 1 + max(loaded IDs), or 1 for an empty set.
func (l *Ledger) Load(ctx context.Context) error {
	loaded, err := l.store.LoadParticipants(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.participants = make([]*models.Participant, len(loaded))
	l.nextID = 1
	for i := range loaded {
		p := loaded[i]
		l.participants[i] = &p
		if p.ID >= l.nextID {
			l.nextID = p.ID + 1
		}
	}
	return nil
}

// Save persists the current collection as a whole. A failed save leaves
// the in-memory state untouched; the caller decides whether to retry.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	snap := l.snapshot()
	l.mu.Unlock()

	return l.store.SaveParticipants(ctx, snap)
}

// AddParticipant creates a participant with the given trimmed name and
// initial balance, assigning the next ID from the monotonic counter.
// The initial balance is not recorded as a transaction: a participant's
// history holds only adjustments applied after creation.
func (l *Ledger) AddParticipant(name string, initialAmount float64) (models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, ErrInvalidInput
	}
	if math.IsNaN(initialAmount) || math.IsInf(initialAmount, 0) {
		return models.Participant{}, ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.participants {
		if strings.EqualFold(p.Name, name) {
			return models.Participant{}, ErrDuplicateName
		}
	}

	p := &models.Participant{
		ID:     l.nextID,
		Name:   name,
		Amount: initialAmount,
	}
	l.nextID++
	l.participants = append(l.participants, p)

	return p.Clone(), nil
}

// ApplyBatch applies a batch of signed adjustments, all sharing one note
// and one timestamp captured at the start of the batch.
//
// Semantics are skip-and-continue, not all-or-nothing: zero changes are
// no-ops and unknown participant IDs are discarded silently; processing
// never aborts partway. The result reports the sum of changes actually
// applied and the number of distinct participants modified; a batch that
// adjusts the same participant twice still counts it once.
func (l *Ledger) ApplyBatch(adjustments []models.Adjustment, note string) models.BatchResult {
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	var result models.BatchResult
	touched := make(map[int64]struct{})
	for _, adj := range adjustments {
		if adj.Change == 0 {
			continue
		}
		p := l.find(adj.ParticipantID)
		if p == nil {
			continue
		}

		p.Amount += adj.Change
		p.Transactions = append(p.Transactions, models.Transaction{
			Change:    adj.Change,
			Note:      note,
			Timestamp: now,
		})
		result.TotalChange += adj.Change
		touched[p.ID] = struct{}{}
	}
	result.Modified = len(touched)

	return result
}

// RemoveParticipant deletes the participant and its full history.
// The ID is never reassigned. Any confirmation step is the caller's
// responsibility.
func (l *Ledger) RemoveParticipant(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.participants {
		if p.ID == id {
			l.participants = append(l.participants[:i], l.participants[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListParticipants returns the collection in insertion order.
// Available in view-only mode; the returned slice is a deep copy.
func (l *Ledger) ListParticipants() []models.Participant {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// GetHistory returns the participant's transactions in chronological
// order. A participant with no transactions yields an empty slice.
func (l *Ledger) GetHistory(id int64) ([]models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.find(id)
	if p == nil {
		return nil, ErrNotFound
	}

	out := make([]models.Transaction, len(p.Transactions))
	copy(out, p.Transactions)
	return out, nil
}

// find returns the participant with the given ID, or nil.
// Linear scan: the collection is tens of entries, not millions.
// Callers must hold l.mu.
func (l *Ledger) find(id int64) *models.Participant {
	for _, p := range l.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// snapshot deep-copies the collection. Callers must hold l.mu.
func (l *Ledger) snapshot() []models.Participant {
	out := make([]models.Participant, len(l.participants))
	for i, p := range l.participants {
		out[i] = p.Clone()
	}
	return out
}
