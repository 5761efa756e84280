package models

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

// JournalEntry is the journal_entries row.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`
	Number           string          `json:"number"`
	EntryDate        time.Time       `json:"entryDate"`
	EntryType        EntryType       `json:"entryType"`
	Status           EntryStatus     `json:"status"`
	Description      string          `json:"description"`
	Reference        string          `json:"reference"`
	Category         string          `json:"category"`
	Subcategory      string          `json:"subcategory"`
	SourceModule     string          `json:"sourceModule"`
	SourceModel      string          `json:"sourceModel"`
	SourceID         string          `json:"sourceID"`
	PeriodID         string          `json:"periodID"`
	IdempotencyKey   string          `json:"idempotencyKey"`
	IsLocked         bool            `json:"isLocked"`
	CreatedByService string          `json:"createdByService"`
	PostedBy         string          `json:"postedBy"`
	ReversedEntryID  *string         `json:"reversedEntryID,omitempty"`
	ReversalEntryID  *string         `json:"reversalEntryID,omitempty"`
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	AuditFields
}

// EntryLine is the journal_entry_lines row.
type EntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
	Project     string          `json:"project"`
	AuditFields
}
