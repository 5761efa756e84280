package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// SourceRef is the (module, model, id) triple tying a ledger entry back to the
// business event that caused it. There is no foreign key on purpose: the
// referenced row lives in a collaborator module's table and may itself be the
// corrupted thing.
type SourceRef struct {
	Module string `json:"module"`
	Model  string `json:"model"`
	ID     string `json:"id"`
}

// Qualified returns the "module.Model" pair used for allowlist lookups.
func (s SourceRef) Qualified() string {
	return s.Module + "." + s.Model
}

func (s SourceRef) String() string {
	return fmt.Sprintf("%s.%s#%s", s.Module, s.Model, s.ID)
}

// IsComplete reports whether all three linkage fields are populated.
func (s SourceRef) IsComplete() bool {
	return s.Module != "" && s.Model != "" && s.ID != ""
}

// SourceDefinition describes one allowlisted source model: where its rows live,
// which entry-number prefix it issues, and whether it is ledger-critical
// (fee/stock/payroll workflows get extra posting sanity checks).
type SourceDefinition struct {
	Module   string
	Model    string
	Table    string // physical table consulted for existence checks
	Prefix   string // entry number prefix, e.g. "SF" for StudentFee
	Critical bool
}

// SourceRegistry is the allowlist of (module, model) pairs that may back a
// journal entry. It is constructed at process start and injected; there is no
// package-level mutable table.
type SourceRegistry struct {
	defs map[string]SourceDefinition
}

// NewSourceRegistry builds a registry from explicit definitions. A definition
// with a missing module, model or table is a configuration error.
func NewSourceRegistry(defs []SourceDefinition) (*SourceRegistry, error) {
	r := &SourceRegistry{defs: make(map[string]SourceDefinition, len(defs))}
	for _, d := range defs {
		if d.Module == "" || d.Model == "" || d.Table == "" {
			return nil, fmt.Errorf("incomplete source definition %q.%q (table %q)", d.Module, d.Model, d.Table)
		}
		if d.Prefix == "" {
			d.Prefix = PrefixForModel(d.Model)
		}
		r.defs[d.Module+"."+d.Model] = d
	}
	return r, nil
}

// DefaultSourceDefinitions lists the business models allowed to back ledger
// entries. Fee, stock and payroll sources are ledger-critical.
func DefaultSourceDefinitions() []SourceDefinition {
	return []SourceDefinition{
		{Module: "students", Model: "StudentFee", Table: "student_fees", Prefix: "SF", Critical: true},
		{Module: "inventory", Model: "StockMovement", Table: "stock_movements", Prefix: "SM", Critical: true},
		{Module: "hr", Model: "Payroll", Table: "payrolls", Prefix: "PR", Critical: true},
		{Module: "finance", Model: "Payment", Table: "payments", Prefix: "PY"},
		{Module: "finance", Model: "Expense", Table: "expenses", Prefix: "EX"},
		{Module: "finance", Model: "ManualJournal", Table: "manual_journals", Prefix: "MJ"},
	}
}

// Contains reports whether the (module, model) pair is allowlisted.
func (r *SourceRegistry) Contains(module, model string) bool {
	_, ok := r.defs[module+"."+model]
	return ok
}

// Lookup returns the definition for a pair, if allowlisted.
func (r *SourceRegistry) Lookup(module, model string) (SourceDefinition, bool) {
	d, ok := r.defs[module+"."+model]
	return d, ok
}

// Definitions returns all registered definitions.
func (r *SourceRegistry) Definitions() []SourceDefinition {
	out := make([]SourceDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// PrefixForModel derives an entry-number prefix from a model name by taking
// its capital letters (StudentFee -> SF). Used as a fallback when a
// definition does not set an explicit prefix.
func PrefixForModel(model string) string {
	var b strings.Builder
	for _, r := range model {
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return strings.ToUpper(model)
	}
	return b.String()
}
