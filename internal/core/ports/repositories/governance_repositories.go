package repositories

import (
	"context"
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
)

// DelegationRepositoryFacade persists authority delegations.
type DelegationRepositoryFacade interface {
	SaveDelegation(ctx context.Context, d domain.AuthorityDelegation) error
	FindDelegationByID(ctx context.Context, delegationID string) (*domain.AuthorityDelegation, error)

	// FindActiveDelegation returns the current (active, unrevoked, unexpired)
	// delegation for the exact (from, to, model) triple, or ErrNotFound.
	FindActiveDelegation(ctx context.Context, fromService, toService, modelName string, now time.Time) (*domain.AuthorityDelegation, error)

	// RevokeDelegation marks the delegation inactive with a revocation time.
	RevokeDelegation(ctx context.Context, delegationID string, revokedAt time.Time) error
}

// QuarantineRepositoryFacade persists quarantine records.
type QuarantineRepositoryFacade interface {
	SaveRecord(ctx context.Context, rec domain.QuarantineRecord) error
	FindRecordByID(ctx context.Context, quarantineID string) (*domain.QuarantineRecord, error)

	// FindOpenRecord returns the QUARANTINED/UNDER_REVIEW record for the
	// (modelName, objectID, corruptionType) triple, or ErrNotFound.
	FindOpenRecord(ctx context.Context, modelName, objectID string, corruptionType domain.CorruptionType) (*domain.QuarantineRecord, error)

	UpdateStatus(ctx context.Context, quarantineID string, status domain.QuarantineStatus, resolutionNotes string, resolvedAt *time.Time, updatedByUserID string, updatedAt time.Time) error

	// Summary aggregates open and resolved records by model, type and status.
	Summary(ctx context.Context) ([]domain.CorruptionSummaryRow, error)

	// ListOpenObjectIDs returns the object ids currently isolated for a model.
	ListOpenObjectIDs(ctx context.Context, modelName string) (map[string]bool, error)
}

// AuditRepositoryFacade is append-only: there is deliberately no update or
// delete method.
type AuditRepositoryFacade interface {
	SaveRecord(ctx context.Context, rec domain.AuditRecord) error
	ListByObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error)
}

// PeriodRepositoryFacade reads accounting periods.
type PeriodRepositoryFacade interface {
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error)
}

// AccountRepositoryFacade reads the chart-of-accounts read model.
type AccountRepositoryFacade interface {
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)
}

// SourceRepositoryFacade checks existence of business rows backing a ledger
// entry. Implementations consult the table named by the source definition.
type SourceRepositoryFacade interface {
	SourceExists(ctx context.Context, def domain.SourceDefinition, objectID string) (bool, error)
}
