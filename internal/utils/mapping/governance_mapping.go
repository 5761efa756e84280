package mapping

import (
	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/erpcore/ledger_governance/internal/models"
)

// ToDomainIdempotencyRecord converts a persisted row to its domain form.
func ToDomainIdempotencyRecord(m models.IdempotencyRecord) domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		RecordID:      m.RecordID,
		OperationType: m.OperationType,
		Key:           m.Key,
		ResultData:    m.ResultData,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		ExpiresAt:     m.ExpiresAt,
	}
}

// ToDomainDelegation converts a persisted row to its domain form.
func ToDomainDelegation(m models.AuthorityDelegation) domain.AuthorityDelegation {
	return domain.AuthorityDelegation{
		DelegationID: m.DelegationID,
		FromService:  m.FromService,
		ToService:    m.ToService,
		ModelName:    m.ModelName,
		GrantedBy:    m.GrantedBy,
		Reason:       m.Reason,
		GrantedAt:    m.GrantedAt,
		ExpiresAt:    m.ExpiresAt,
		IsActive:     m.IsActive,
		RevokedAt:    m.RevokedAt,
	}
}

// ToModelDelegation converts a domain delegation to its persisted row.
func ToModelDelegation(d domain.AuthorityDelegation) models.AuthorityDelegation {
	return models.AuthorityDelegation{
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

// ToDomainQuarantineRecord converts a persisted row to its domain form.
func ToDomainQuarantineRecord(m models.QuarantineRecord) domain.QuarantineRecord {
	return domain.QuarantineRecord{
		QuarantineID:    m.QuarantineID,
		ModelName:       m.ModelName,
		ObjectID:        m.ObjectID,
		CorruptionType:  domain.CorruptionType(m.CorruptionType),
		OriginalData:    m.OriginalData,
		Reason:          m.Reason,
		QuarantinedBy:   m.QuarantinedBy,
		Status:          domain.QuarantineStatus(m.Status),
		ResolutionNotes: m.ResolutionNotes,
		ResolvedAt:      m.ResolvedAt,
		AuditFields:     toDomainAuditFields(m.AuditFields),
	}
}

// ToModelQuarantineRecord converts a domain record to its persisted row.
func ToModelQuarantineRecord(d domain.QuarantineRecord) models.QuarantineRecord {
	return models.QuarantineRecord{
		QuarantineID:    d.QuarantineID,
		ModelName:       d.ModelName,
		ObjectID:        d.ObjectID,
		CorruptionType:  string(d.CorruptionType),
		OriginalData:    d.OriginalData,
		Reason:          d.Reason,
		QuarantinedBy:   d.QuarantinedBy,
		Status:          string(d.Status),
		ResolutionNotes: d.ResolutionNotes,
		ResolvedAt:      d.ResolvedAt,
		AuditFields:     toModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a persisted row to its domain form.
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:             m.PeriodID,
		Name:                 m.Name,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		Status:               domain.PeriodStatus(m.Status),
		AllowClosedReversals: m.AllowClosedReversals,
	}
}

// ToDomainAccount converts a persisted row to its domain form.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountCode: m.AccountCode,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		IsActive:    m.IsActive,
	}
}
