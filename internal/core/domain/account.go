package domain

// AccountType classifies a chart-of-accounts entry.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is the minimal chart-of-accounts read model the gateway needs to
// validate entry lines. Account maintenance itself belongs to the finance
// module, not this core.
type Account struct {
	AccountCode string      `json:"accountCode"` // Primary Key
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
}
