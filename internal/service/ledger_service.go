// Package service implements the HTTP presentation layer: thin JSON
// handlers that translate requests into ledger and gate operations.
package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/models"
	"github.com/tallyapp/tally/internal/storage"
)

// LedgerService exposes the ledger's read and mutate operations over HTTP.
// Mutating routes are wrapped with the editor guard at routing time; the
// handlers themselves only translate payloads and persist after success.
type LedgerService struct {
	ledger    *ledger.Ledger
	validator *validator.Validate
}

// NewLedgerService creates a new LedgerService around the given ledger.
// The participants gauge is seeded from the ledger's current size so a
// restarted server reports the loaded collection, not zero.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	participantCount.Set(float64(len(l.ListParticipants())))
	return &LedgerService{
		ledger:    l,
		validator: validator.New(),
	}
}

// AddParticipantRequest is the payload for creating a participant.
type AddParticipantRequest struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount"`
}

// ApplyBatchRequest is the payload for one batch adjustment: a sequence of
// per-participant changes sharing one optional note.
type ApplyBatchRequest struct {
	Adjustments []models.Adjustment `json:"adjustments" validate:"required,min=1"`
	Note        string              `json:"note"`
}

// ListParticipants returns all participants with their balances and
// histories. Available in view-only mode.
func (s *LedgerService) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants := s.ledger.ListParticipants()
	writeJSON(w, http.StatusOK, map[string]any{"participants": participants})
}

// GetHistory returns one participant's transactions in chronological order.
// Available in view-only mode.
func (s *LedgerService) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id", nil)
		return
	}

	history, err := s.ledger.GetHistory(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "participant not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": history})
}

// AddParticipant creates a participant and persists the grown collection.
func (s *LedgerService) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req AddParticipantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	p, err := s.ledger.AddParticipant(req.Name, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateName):
			writeError(w, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ledger.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}

	if !s.persist(w, r) {
		return
	}

	participantCount.Inc()
	slog.Info("Participant added", "id", p.ID, "name", p.Name, "amount", p.Amount)
	writeJSON(w, http.StatusCreated, p)
}

// ApplyBatch applies a batch of adjustments and persists the new balances.
// Unknown participant ids and zero changes are skipped, not rejected; the
// response reports only the aggregate outcome.
func (s *LedgerService) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var req ApplyBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	result := s.ledger.ApplyBatch(req.Adjustments, req.Note)

	if !s.persist(w, r) {
		return
	}

	batchesApplied.Inc()
	batchParticipantsModified.Add(float64(result.Modified))
	slog.Info("Batch applied",
		"entries", len(req.Adjustments),
		"modified", result.Modified,
		"total_change", result.TotalChange,
	)
	writeJSON(w, http.StatusOK, result)
}

// RemoveParticipant deletes a participant and its full history.
// The confirmation step lives in the client; this endpoint is final.
func (s *LedgerService) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id", nil)
		return
	}

	if err := s.ledger.RemoveParticipant(id); err != nil {
		writeError(w, http.StatusNotFound, "participant not found", nil)
		return
	}

	if !s.persist(w, r) {
		return
	}

	participantCount.Dec()
	slog.Info("Participant removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// persist saves the ledger after a successful mutation, reporting failure
// to the client. The in-memory mutation stands either way; the operator can
// retry by repeating the request or restarting against the stored state.
func (s *LedgerService) persist(w http.ResponseWriter, r *http.Request) bool {
	if err := s.ledger.Save(r.Context()); err != nil {
		slog.Error("Failed to persist ledger", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrPersistence) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "failed to persist ledger", nil)
		return false
	}
	return true
}
