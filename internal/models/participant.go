package models

// Participant is a named entity with a running balance and an append-only
// transaction history.
type Participant struct {
	// ID is assigned by the ledger's monotonic counter at creation time
	// and never reused.
	ID int64 `json:"id"`

	// Name is the display name, trimmed of surrounding whitespace.
	// Unique within a ledger, compared case-insensitively.
	Name string `json:"name"`

	// Amount is the current balance: the caller-supplied initial value
	// plus the sum of Change over all recorded transactions.
	Amount float64 `json:"amount"`

	// Transactions is the history in chronological (insertion) order.
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy so callers can hand out participants without
// exposing the ledger's internal state to mutation.
func (p *Participant) Clone() Participant {
	out := Participant{
		ID:     p.ID,
		Name:   p.Name,
		Amount: p.Amount,
	}
	if len(p.Transactions) > 0 {
		out.Transactions = make([]Transaction, len(p.Transactions))
		copy(out.Transactions, p.Transactions)
	}
	return out
}
