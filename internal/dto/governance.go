package dto

import (
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/erpcore/ledger_governance/internal/utils/concurrency"
)

// DelegateAuthorityRequest grants time-boxed write authority to a service.
type DelegateAuthorityRequest struct {
	ToService string `json:"toService" binding:"required"`
	ModelName string `json:"modelName" binding:"required"`
	// Duration is a Go duration string, e.g. "2h30m". Capped at 24h.
	Duration string `json:"duration" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// RevokeDelegationRequest ends a delegation early.
type RevokeDelegationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DelegationResponse mirrors one delegation.
type DelegationResponse struct {
	DelegationID string     `json:"delegationID"`
	FromService  string     `json:"fromService"`
	ToService    string     `json:"toService"`
	ModelName    string     `json:"modelName"`
	GrantedBy    string     `json:"grantedBy"`
	Reason       string     `json:"reason"`
	GrantedAt    time.Time  `json:"grantedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsActive     bool       `json:"isActive"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}

// ToDelegationResponse converts a domain delegation.
func ToDelegationResponse(d *domain.AuthorityDelegation) DelegationResponse {
	return DelegationResponse{
		DelegationID: d.DelegationID,
		FromService:  d.FromService,
		ToService:    d.ToService,
		ModelName:    d.ModelName,
		GrantedBy:    d.GrantedBy,
		Reason:       d.Reason,
		GrantedAt:    d.GrantedAt,
		ExpiresAt:    d.ExpiresAt,
		IsActive:     d.IsActive,
		RevokedAt:    d.RevokedAt,
	}
}

// QuarantineRequest isolates an object whose integrity is in doubt.
type QuarantineRequest struct {
	ModelName      string         `json:"modelName" binding:"required"`
	ObjectID       string         `json:"objectID" binding:"required"`
	CorruptionType string         `json:"corruptionType" binding:"required"`
	Reason         string         `json:"reason" binding:"required"`
	OriginalData   map[string]any `json:"originalData"`
}

// ResolveQuarantineRequest closes a quarantine record.
type ResolveQuarantineRequest struct {
	ResolutionNotes string `json:"resolutionNotes" binding:"required"`
}

// BackfillLinkageRequest repoints an entry's source linkage.
type BackfillLinkageRequest struct {
	SourceModule string `json:"sourceModule" binding:"required"`
	SourceModel  string `json:"sourceModel" binding:"required"`
	SourceID     string `json:"sourceID" binding:"required"`
	DryRun       bool   `json:"dryRun"`
}

// CleanupRequest bounds an idempotency cleanup pass.
type CleanupRequest struct {
	BatchSize  int `json:"batchSize"`
	MaxAgeDays int `json:"maxAgeDays"`
}

// CleanupReport summarizes one idempotency cleanup pass.
type CleanupReport struct {
	ExpiredDeleted int64                       `json:"expiredDeleted"`
	AgedDeleted    int64                       `json:"agedDeleted"`
	Batches        int                         `json:"batches"`
	DurationMillis int64                       `json:"durationMillis"`
	Counters       concurrency.CounterSnapshot `json:"counters"`
}

// ScanRequest bounds an orphaned-entry scan.
type ScanRequest struct {
	BatchSize int `json:"batchSize"`
}

// ExecuteRepairsRequest carries a previously generated corruption report plus
// the approved repair policies to apply to it.
type ExecuteRepairsRequest struct {
	Report domain.CorruptionReport     `json:"report" binding:"required"`
	Config domain.ApprovedRepairConfig `json:"config" binding:"required"`
}

// ValidateRepairsRequest re-verifies invariants after a repair run.
type ValidateRepairsRequest struct {
	Result domain.RepairExecutionResult `json:"result" binding:"required"`
}
