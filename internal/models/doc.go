// Package models defines the core domain models for Tally.
//
// # Models
//
//   - Participant: a named entity with a running balance and history
//   - Transaction: one immutable recorded balance change
//   - Adjustment: one entry of a batch adjustment request
//   - BatchResult: the aggregate outcome of applying a batch
//
// # Design Principles
//
// 1. **Plain data**: models carry no behavior; the ledger package owns all
// mutation rules.
// 2. **Immutability of history**: a Transaction is never edited or removed
// once appended to a participant.
// 3. **Stable identity**: participant IDs are small integers assigned by a
// monotonic counter and are never reused, even after removal.
package models
