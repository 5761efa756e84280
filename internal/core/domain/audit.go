package domain

import "time"

// Audit operations recorded by the governance core.
const (
	AuditOpCreate             = "CREATE"
	AuditOpReverse            = "REVERSE"
	AuditOpCreateFailed       = "CREATE_FAILED"
	AuditOpReverseFailed      = "REVERSE_FAILED"
	AuditOpAuthorityViolation = "AUTHORITY_VIOLATION"
	AuditOpDelegate           = "DELEGATE"
	AuditOpRevokeDelegation   = "REVOKE_DELEGATION"
	AuditOpQuarantine         = "QUARANTINE"
	AuditOpQuarantineReview   = "QUARANTINE_UNDER_REVIEW"
	AuditOpResolveQuarantine  = "RESOLVE_QUARANTINE"
	AuditOpBackfillLinkage    = "BACKFILL_LINKAGE"
	AuditOpRepair             = "REPAIR"
	AuditOpRepairRollback     = "REPAIR_ROLLBACK"
)

// AuditRecord is one append-only event in the audit trail. There is no update
// or delete API: records are written once and read forever. ObjectID may be
// empty for events that precede object existence; the writer skips persisting
// those linkage-less events only when configured to, otherwise stores them
// with a null object id.
type AuditRecord struct {
	AuditID       string         `json:"auditID"` // Primary Key (UUID)
	ModelName     string         `json:"modelName"`
	ObjectID      string         `json:"objectID,omitempty"`
	Operation     string         `json:"operation"`
	User          string         `json:"user"`
	SourceService string         `json:"sourceService"`
	BeforeData    map[string]any `json:"beforeData,omitempty"`
	AfterData     map[string]any `json:"afterData,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}
