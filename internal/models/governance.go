package models

import "time"

// IdempotencyRecord is the idempotency_records row. result_data is jsonb.
type IdempotencyRecord struct {
	RecordID      string         `json:"recordID"`
	OperationType string         `json:"operationType"`
	Key           string         `json:"key"`
	ResultData    map[string]any `json:"resultData"`
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	ExpiresAt     time.Time      `json:"expiresAt"`
}

// AuthorityDelegation is the authority_delegations row.
type AuthorityDelegation struct {
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

// QuarantineRecord is the quarantine_records row. original_data is jsonb.
type QuarantineRecord struct {
	QuarantineID    string         `json:"quarantineID"`
	ModelName       string         `json:"modelName"`
	ObjectID        string         `json:"objectID"`
	CorruptionType  string         `json:"corruptionType"`
	OriginalData    map[string]any `json:"originalData"`
	Reason          string         `json:"reason"`
	QuarantinedBy   string         `json:"quarantinedBy"`
	Status          string         `json:"status"`
	ResolutionNotes string         `json:"resolutionNotes"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
	AuditFields
}

// AuditRecord is the audit_trail row. before/after/context are jsonb.
// The table has no update or delete path in the application.
type AuditRecord struct {
	AuditID       string         `json:"auditID"`
	ModelName     string         `json:"modelName"`
	ObjectID      *string        `json:"objectID,omitempty"`
	Operation     string         `json:"operation"`
	UserID        string         `json:"userID"`
	SourceService string         `json:"sourceService"`
	BeforeData    map[string]any `json:"beforeData,omitempty"`
	AfterData     map[string]any `json:"afterData,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// AccountingPeriod is the accounting_periods row.
type AccountingPeriod struct {
	PeriodID             string    `json:"periodID"`
	Name                 string    `json:"name"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	Status               string    `json:"status"`
	AllowClosedReversals bool      `json:"allowClosedReversals"`
}

// Account is the accounts row (chart-of-accounts read model).
type Account struct {
	AccountCode string `json:"accountCode"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	IsActive    bool   `json:"isActive"`
}
