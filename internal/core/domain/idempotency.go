package domain

import "time"

// Well-known operation types governed by the idempotency store.
const (
	OpJournalEntry         = "journal_entry"
	OpJournalEntryReversal = "journal_entry_reversal"
)

// Result data status markers. A record starts as a placeholder and is
// finalized with the real result once the governed operation commits.
const (
	IdempotencyPending   = "PENDING"
	IdempotencyCompleted = "COMPLETED"
)

// IdempotencyRecord is the durable dedup ledger row for one governed
// operation. For a given (operationType, key) at most one non-expired record
// exists; replays return the stored result instead of re-executing.
type IdempotencyRecord struct {
	RecordID      string         `json:"recordID"` // Primary Key (UUID)
	OperationType string         `json:"operationType"`
	Key           string         `json:"key"`        // Composite unique with OperationType
	ResultData    map[string]any `json:"resultData"` // Opaque payload, e.g. created entry id
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	ExpiresAt     time.Time      `json:"expiresAt"`
}

// IsExpired reports whether the record's key has become reusable.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// IsPending reports whether the governed operation is still in flight (the
// placeholder has not been finalized).
func (r *IdempotencyRecord) IsPending() bool {
	status, _ := r.ResultData["status"].(string)
	return status == IdempotencyPending
}
