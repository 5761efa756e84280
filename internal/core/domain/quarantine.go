package domain

import "time"

// QuarantineStatus tracks the resolution workflow of an isolated object.
type QuarantineStatus string

const (
	Quarantined QuarantineStatus = "QUARANTINED"
	UnderReview QuarantineStatus = "UNDER_REVIEW"
	Resolved    QuarantineStatus = "RESOLVED"
)

// CorruptionType names the closed set of integrity defects the scanner and
// repair engine recognize.
type CorruptionType string

const (
	CorruptionMissingLinkage CorruptionType = "missing_source_linkage"
	CorruptionInvalidLinkage CorruptionType = "invalid_source_linkage"
	CorruptionUnbalanced     CorruptionType = "unbalanced_entry"
)

// QuarantineRecord isolates an object whose integrity cannot be established.
// The record references its subject by (modelName, objectID) generically with
// no foreign key: the referenced row may be the corrupted thing. Records are
// never silently deleted.
type QuarantineRecord struct {
	QuarantineID    string           `json:"quarantineID"` // Primary Key (UUID)
	ModelName       string           `json:"modelName"`
	ObjectID        string           `json:"objectID"`
	CorruptionType  CorruptionType   `json:"corruptionType"`
	OriginalData    map[string]any   `json:"originalData"` // Snapshot taken at quarantine time
	Reason          string           `json:"reason"`
	QuarantinedBy   string           `json:"quarantinedBy"`
	Status          QuarantineStatus `json:"status"`
	ResolutionNotes string           `json:"resolutionNotes,omitempty"`
	ResolvedAt      *time.Time       `json:"resolvedAt,omitempty"`
	AuditFields
}

// IsOpen reports whether the record still isolates its object (not resolved).
func (q *QuarantineRecord) IsOpen() bool {
	return q.Status == Quarantined || q.Status == UnderReview
}

// CorruptionSummaryRow is one aggregate bucket of the corruption summary.
type CorruptionSummaryRow struct {
	ModelName      string           `json:"modelName"`
	CorruptionType CorruptionType   `json:"corruptionType"`
	Status         QuarantineStatus `json:"status"`
	Count          int              `json:"count"`
}
