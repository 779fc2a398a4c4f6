package models

import "time"

// Transaction is one immutable recorded balance change.
// Every transaction created by the same batch apply shares the same
// note and timestamp.
type Transaction struct {
	// Change is the signed delta applied to the participant's balance.
	// Never zero: zero-change entries are not recorded.
	Change float64 `json:"change"`

	// Note is an optional free-text annotation shared by the whole batch.
	Note string `json:"note"`

	// Timestamp is captured once at the start of the batch and is
	// identical across all transactions the batch produced.
	Timestamp time.Time `json:"timestamp"`
}

// Adjustment is one entry of a batch adjustment request: a signed change
// targeting a single participant.
type Adjustment struct {
	// ParticipantID identifies the participant to adjust. Unknown IDs
	// are skipped, not rejected.
	ParticipantID int64 `json:"participantId"`

	// Change is the signed delta to apply. Zero means no-op.
	Change float64 `json:"change"`
}

// BatchResult is the aggregate outcome of one batch apply.
type BatchResult struct {
	// TotalChange is the sum of all changes that were actually applied.
	TotalChange float64 `json:"totalChange"`

	// Modified is the number of distinct participants whose balance
	// changed, regardless of how many entries targeted each of them.
	Modified int `json:"modified"`
}
