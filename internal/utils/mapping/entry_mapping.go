package mapping

import (
	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/erpcore/ledger_governance/internal/models"
)

// ToModelEntry converts a domain JournalEntry to its persisted row.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		Number:           d.Number,
		EntryDate:        d.EntryDate,
		EntryType:        models.EntryType(d.EntryType),
		Status:           models.EntryStatus(d.Status),
		Description:      d.Description,
		Reference:        d.Reference,
		Category:         d.Category,
		Subcategory:      d.Subcategory,
		SourceModule:     d.SourceModule,
		SourceModel:      d.SourceModel,
		SourceID:         d.SourceID,
		PeriodID:         d.PeriodID,
		IdempotencyKey:   d.IdempotencyKey,
		IsLocked:         d.IsLocked,
		CreatedByService: d.CreatedByService,
		PostedBy:         d.PostedBy,
		ReversedEntryID:  d.ReversedEntryID,
		ReversalEntryID:  d.ReversalEntryID,
		TotalDebit:       d.TotalDebit,
		TotalCredit:      d.TotalCredit,
		AuditFields:      toModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a persisted row to a domain JournalEntry.
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		Number:           m.Number,
		EntryDate:        m.EntryDate,
		EntryType:        domain.EntryType(m.EntryType),
		Status:           domain.EntryStatus(m.Status),
		Description:      m.Description,
		Reference:        m.Reference,
		Category:         m.Category,
		Subcategory:      m.Subcategory,
		SourceModule:     m.SourceModule,
		SourceModel:      m.SourceModel,
		SourceID:         m.SourceID,
		PeriodID:         m.PeriodID,
		IdempotencyKey:   m.IdempotencyKey,
		IsLocked:         m.IsLocked,
		CreatedByService: m.CreatedByService,
		PostedBy:         m.PostedBy,
		ReversedEntryID:  m.ReversedEntryID,
		ReversalEntryID:  m.ReversalEntryID,
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		AuditFields:      toDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain EntryLine to its persisted row.
func ToModelLine(d domain.EntryLine) models.EntryLine {
	return models.EntryLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountCode: d.AccountCode,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
		CostCenter:  d.CostCenter,
		Project:     d.Project,
		AuditFields: toModelAuditFields(d.AuditFields),
	}
}

// ToDomainLine converts a persisted row to a domain EntryLine.
func ToDomainLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountCode: m.AccountCode,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		CostCenter:  m.CostCenter,
		Project:     m.Project,
		AuditFields: toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineSlice converts persisted rows to domain EntryLines.
func ToDomainLineSlice(ms []models.EntryLine) []domain.EntryLine {
	out := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		out[i] = ToDomainLine(m)
	}
	return out
}

func toModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

func toDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}
