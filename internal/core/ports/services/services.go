package services

import (
	"context"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/erpcore/ledger_governance/internal/dto"
)

// AccountingGatewaySvcFacade is the single entry point for ledger-entry
// creation and reversal. Every other write path is a governance violation.
type AccountingGatewaySvcFacade interface {
	CreateJournalEntry(ctx context.Context, gov domain.GovernanceContext, req dto.CreateEntryRequest) (*domain.JournalEntry, error)
	CreateReversalEntry(ctx context.Context, gov domain.GovernanceContext, originalEntryID string, req dto.CreateReversalRequest) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, gov domain.GovernanceContext, entryID string) (*domain.JournalEntry, error)
}

// AuthoritySvcFacade validates and manages single-writer authority per model.
type AuthoritySvcFacade interface {
	// ValidateAuthority returns nil when serviceName may perform operation on
	// modelName, and an AuthorityViolationError (already audited) otherwise.
	ValidateAuthority(ctx context.Context, serviceName, modelName, operation, userID string) error

	DelegateAuthority(ctx context.Context, gov domain.GovernanceContext, req dto.DelegateAuthorityRequest) (*domain.AuthorityDelegation, error)

	// RevokeDelegation marks a delegation revoked. Revoking an already
	// revoked delegation is a no-op, not an error.
	RevokeDelegation(ctx context.Context, gov domain.GovernanceContext, delegationID, reason string) error
}

// IdempotencySvcFacade provides exactly-once bookkeeping for governed
// operations.
type IdempotencySvcFacade interface {
	// CheckAndRecord is the locked check-and-record step. Exactly one of N
	// concurrent callers with the same (operationType, key) acquires the
	// record; the rest see isDuplicate=true with the stored result.
	CheckAndRecord(ctx context.Context, operationType, key string, resultData map[string]any, userID string, expiresInHours int) (isDuplicate bool, record *domain.IdempotencyRecord, storedResult map[string]any, err error)

	// AwaitResult blocks (bounded busy-wait) until a pending record is
	// finalized, returning the final result data. Times out with a
	// ConcurrencyError.
	AwaitResult(ctx context.Context, operationType, key string) (map[string]any, error)

	Finalize(ctx context.Context, recordID string, resultData map[string]any) error

	// Release deletes the record after a failed operation so a retry with the
	// same key is not blocked.
	Release(ctx context.Context, recordID string) error

	CleanupExpiredRecords(ctx context.Context, req dto.CleanupRequest) (*dto.CleanupReport, error)
}

// LinkageSvcFacade validates source linkage against the allowlist and the
// referenced rows, and repairs broken linkage.
type LinkageSvcFacade interface {
	// ValidateLinkage returns false when the pair is not allowlisted or the
	// referenced row is missing. It only errors on infrastructure failures.
	ValidateLinkage(ctx context.Context, ref domain.SourceRef) (bool, error)

	// CreateLinkage is the strict guard used before persisting a source
	// reference: invalid linkage raises a ValidationError with full context.
	CreateLinkage(ctx context.Context, ref domain.SourceRef) error

	ScanOrphanedEntries(ctx context.Context, batchSize int) (*domain.CorruptionReport, error)

	BackfillSourceLinkage(ctx context.Context, gov domain.GovernanceContext, entryID string, ref domain.SourceRef, dryRun bool) error
}

// QuarantineSvcFacade isolates and resolves corrupted objects.
type QuarantineSvcFacade interface {
	// QuarantineData is idempotent per (modelName, objectID, corruptionType)
	// while a record is still open.
	QuarantineData(ctx context.Context, gov domain.GovernanceContext, req dto.QuarantineRequest) (*domain.QuarantineRecord, error)

	// MarkUnderReview moves an open record under operator review. It is a
	// no-op when the record is already under review and rejects records
	// that are resolved.
	MarkUnderReview(ctx context.Context, gov domain.GovernanceContext, quarantineID string) error

	// ResolveQuarantine is a no-op when the record is already resolved.
	ResolveQuarantine(ctx context.Context, gov domain.GovernanceContext, quarantineID, resolutionNotes string) error

	GetCorruptionSummary(ctx context.Context) ([]domain.CorruptionSummaryRow, error)
}

// AuditTrailSvcFacade writes append-only audit events. Writes are best-effort
// for the business transaction: failures are logged, never propagated.
type AuditTrailSvcFacade interface {
	Record(ctx context.Context, rec domain.AuditRecord)
	ListForObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error)
}

// RepairExecutionSvcFacade runs pre-approved repair policies over a
// corruption report.
type RepairExecutionSvcFacade interface {
	ExecuteApprovedRepairs(ctx context.Context, gov domain.GovernanceContext, report domain.CorruptionReport, config domain.ApprovedRepairConfig) (*domain.RepairExecutionResult, error)
}

// RepairValidationSvcFacade re-verifies system invariants after a repair run.
type RepairValidationSvcFacade interface {
	ValidateRepairResults(ctx context.Context, result domain.RepairExecutionResult) (*domain.RepairValidationResult, error)
}

// ServiceContainer holds all the services and manages their dependencies.
type ServiceContainer struct {
	Gateway          AccountingGatewaySvcFacade
	Authority        AuthoritySvcFacade
	Idempotency      IdempotencySvcFacade
	Linkage          LinkageSvcFacade
	Quarantine       QuarantineSvcFacade
	Audit            AuditTrailSvcFacade
	RepairExecution  RepairExecutionSvcFacade
	RepairValidation RepairValidationSvcFacade
}
