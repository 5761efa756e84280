package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates how a journal entry came to exist.
type EntryType string

const (
	EntryAutomatic EntryType = "AUTOMATIC"
	EntryManual    EntryType = "MANUAL"
	EntryReversal  EntryType = "REVERSAL"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "DRAFT"
	EntryPosted EntryStatus = "POSTED"
)

// JournalEntry is an immutable-once-posted accounting transaction. The gateway
// posts and locks every entry it creates in the same atomic transaction; the
// only sanctioned change afterwards is a reversal.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`     // Primary Key (UUID)
	Number           string          `json:"number"`      // Unique, {PREFIX}-{4-digit sequence}
	EntryDate        time.Time       `json:"entryDate"`   // Date the event occurred
	EntryType        EntryType       `json:"entryType"`   // AUTOMATIC | MANUAL | REVERSAL
	Status           EntryStatus     `json:"status"`      // DRAFT | POSTED
	Description      string          `json:"description"` // Nullable user description
	Reference        string          `json:"reference"`   // Nullable external reference
	Category         string          `json:"category"`
	Subcategory      string          `json:"subcategory"`
	SourceModule     string          `json:"sourceModule"` // Source linkage, validated against allowlist
	SourceModel      string          `json:"sourceModel"`
	SourceID         string          `json:"sourceID"`
	PeriodID         string          `json:"periodID"` // FK -> AccountingPeriod.periodID
	IdempotencyKey   string          `json:"idempotencyKey"`
	IsLocked         bool            `json:"isLocked"`
	CreatedByService string          `json:"createdByService"`
	PostedBy         string          `json:"postedBy"`
	ReversedEntryID  *string         `json:"reversedEntryID,omitempty"` // Set on a reversal -> the original entry
	ReversalEntryID  *string         `json:"reversalEntryID,omitempty"` // Set on the original -> its reversal
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	Lines            []EntryLine     `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// SourceRef returns the entry's source linkage triple.
func (e *JournalEntry) SourceRef() SourceRef {
	return SourceRef{Module: e.SourceModule, Model: e.SourceModel, ID: e.SourceID}
}

// IsReversal reports whether this entry offsets another entry.
func (e *JournalEntry) IsReversal() bool {
	return e.EntryType == EntryReversal || e.ReversedEntryID != nil
}

// IsReversed reports whether this entry has already been offset by a reversal.
func (e *JournalEntry) IsReversed() bool {
	return e.ReversalEntryID != nil
}

// CanBeReversed reports whether a reversal may be created for this entry.
// Only posted, locked, non-reversal, not-yet-reversed entries qualify.
func (e *JournalEntry) CanBeReversed() bool {
	return e.Status == EntryPosted && e.IsLocked && !e.IsReversal() && !e.IsReversed()
}

// EntryLine is one debit or credit leg of a journal entry. Exactly one of
// Debit/Credit is non-zero, both are non-negative.
type EntryLine struct {
	LineID      string          `json:"lineID"`      // Primary Key (UUID)
	EntryID     string          `json:"entryID"`     // FK -> JournalEntry.entryID
	AccountCode string          `json:"accountCode"` // FK -> chart of accounts
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter,omitempty"`
	Project     string          `json:"project,omitempty"`
	AuditFields
}
