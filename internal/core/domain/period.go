package domain

import "time"

// PeriodStatus indicates whether an accounting period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod bounds the dates a journal entry may post into.
type AccountingPeriod struct {
	PeriodID  string       `json:"periodID"` // Primary Key (UUID)
	Name      string       `json:"name"`     // e.g. "2026-09"
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	// AllowClosedReversals permits reversal entries into this period even
	// after it closes (the closed-period-reversal exception).
	AllowClosedReversals bool `json:"allowClosedReversals"`
}

// ContainsDate reports whether the date falls within the period bounds
// (inclusive).
func (p *AccountingPeriod) ContainsDate(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}

// AcceptsPosting reports whether a regular entry dated `date` may post here.
func (p *AccountingPeriod) AcceptsPosting(date time.Time) bool {
	return p.Status == PeriodOpen && p.ContainsDate(date)
}

// AcceptsReversal reports whether a reversal entry dated `date` may post here.
func (p *AccountingPeriod) AcceptsReversal(date time.Time) bool {
	if !p.ContainsDate(date) {
		return false
	}
	return p.Status == PeriodOpen || p.AllowClosedReversals
}
