package dto

import (
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one debit or credit leg of a requested entry. Exactly
// one of debit/credit must be positive; the service enforces the invariant
// beyond what binding can express.
type EntryLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
	Project     string          `json:"project"`
}

// CreateEntryRequest is the gateway's journal-entry creation payload.
type CreateEntryRequest struct {
	SourceModule string             `json:"sourceModule" binding:"required"`
	SourceModel  string             `json:"sourceModel" binding:"required"`
	SourceID     string             `json:"sourceID" binding:"required"`
	Lines        []EntryLineRequest `json:"lines" binding:"required,min=1,dive"`
	// IdempotencyKey defaults to the deterministic JE:{module}:{model}:{id}:create form.
	IdempotencyKey string     `json:"idempotencyKey" binding:"omitempty,opkey"`
	EntryType      string     `json:"entryType" binding:"omitempty,oneof=AUTOMATIC MANUAL"`
	Description    string     `json:"description"`
	Reference      string     `json:"reference"`
	Date           time.Time  `json:"date" binding:"required"`
	MovementDate   *time.Time `json:"movementDate,omitempty"` // Stock movements only
	PeriodID       string     `json:"periodID"`               // Defaults to the period containing Date
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory"`
}

// SourceRef returns the request's source linkage triple.
func (r CreateEntryRequest) SourceRef() domain.SourceRef {
	return domain.SourceRef{Module: r.SourceModule, Model: r.SourceModel, ID: r.SourceID}
}

// CreateReversalRequest asks the gateway to offset a posted entry.
type CreateReversalRequest struct {
	Reason string `json:"reason" binding:"required"`
	// PartialAmount reverses only part of the original total when set.
	PartialAmount *decimal.Decimal `json:"partialAmount,omitempty"`
	// IdempotencyKey defaults to REV:{module}:{model}:{id}:{originalEntryID}.
	IdempotencyKey string `json:"idempotencyKey"`
}

// EntryLineResponse mirrors one persisted line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
	Project     string          `json:"project,omitempty"`
}

// EntryResponse mirrors one persisted journal entry.
type EntryResponse struct {
	EntryID         string              `json:"entryID"`
	Number          string              `json:"number"`
	EntryDate       time.Time           `json:"entryDate"`
	EntryType       string              `json:"entryType"`
	Status          string              `json:"status"`
	Description     string              `json:"description,omitempty"`
	Reference       string              `json:"reference,omitempty"`
	SourceModule    string              `json:"sourceModule"`
	SourceModel     string              `json:"sourceModel"`
	SourceID        string              `json:"sourceID"`
	PeriodID        string              `json:"periodID"`
	IsLocked        bool                `json:"isLocked"`
	PostedBy        string              `json:"postedBy"`
	ReversedEntryID *string             `json:"reversedEntryID,omitempty"`
	ReversalEntryID *string             `json:"reversalEntryID,omitempty"`
	TotalDebit      decimal.Decimal     `json:"totalDebit"`
	TotalCredit     decimal.Decimal     `json:"totalCredit"`
	Lines           []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// ToEntryResponse converts a domain entry (with whatever lines are loaded).
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:         e.EntryID,
		Number:          e.Number,
		EntryDate:       e.EntryDate,
		EntryType:       string(e.EntryType),
		Status:          string(e.Status),
		Description:     e.Description,
		Reference:       e.Reference,
		SourceModule:    e.SourceModule,
		SourceModel:     e.SourceModel,
		SourceID:        e.SourceID,
		PeriodID:        e.PeriodID,
		IsLocked:        e.IsLocked,
		PostedBy:        e.PostedBy,
		ReversedEntryID: e.ReversedEntryID,
		ReversalEntryID: e.ReversalEntryID,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		CreatedAt:       e.CreatedAt,
	}
	for _, line := range e.Lines {
		resp.Lines = append(resp.Lines, EntryLineResponse{
			LineID:      line.LineID,
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			CostCenter:  line.CostCenter,
			Project:     line.Project,
		})
	}
	return resp
}
