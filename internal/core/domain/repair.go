package domain

import "time"

// RepairPolicy is the closed set of actions the repair engine may take for a
// corruption type. ADJUSTMENT and REBUILD are deliberately conservative: they
// always quarantine for manual review instead of auto-executing.
type RepairPolicy string

const (
	PolicyRelink     RepairPolicy = "RELINK"
	PolicyQuarantine RepairPolicy = "QUARANTINE"
	PolicyAdjustment RepairPolicy = "ADJUSTMENT"
	PolicyRebuild    RepairPolicy = "REBUILD"
)

// KnownPolicy reports whether p belongs to the closed policy set.
func KnownPolicy(p RepairPolicy) bool {
	switch p {
	case PolicyRelink, PolicyQuarantine, PolicyAdjustment, PolicyRebuild:
		return true
	}
	return false
}

// RepairStatus is the per-corruption-type repair state machine:
// PENDING_APPROVAL -> IN_PROGRESS -> {COMPLETED | COMPLETED_WITH_ISSUES | FAILED}.
type RepairStatus string

const (
	RepairPendingApproval     RepairStatus = "PENDING_APPROVAL"
	RepairInProgress          RepairStatus = "IN_PROGRESS"
	RepairCompleted           RepairStatus = "COMPLETED"
	RepairCompletedWithIssues RepairStatus = "COMPLETED_WITH_ISSUES"
	RepairFailed              RepairStatus = "FAILED"
)

// ObjectOutcome classifies what happened to one object during repair.
type ObjectOutcome string

const (
	OutcomeRepaired    ObjectOutcome = "repaired"
	OutcomeQuarantined ObjectOutcome = "quarantined"
	OutcomeFailed      ObjectOutcome = "failed"
)

// CorruptionIssue is one flagged object in a corruption report. SuggestedRef,
// when present, is the scanner's candidate for relinking; the repair engine
// only relinks to a candidate it can verify, never guesses.
type CorruptionIssue struct {
	EntryID        string         `json:"entryID"`
	EntryNumber    string         `json:"entryNumber,omitempty"`
	CorruptionType CorruptionType `json:"corruptionType"`
	Detail         string         `json:"detail,omitempty"`
	SuggestedRef   *SourceRef     `json:"suggestedRef,omitempty"`
}

// CorruptionReport is the scanner output consumed by the repair engine.
type CorruptionReport struct {
	GeneratedAt  time.Time              `json:"generatedAt"`
	ScannedCount int                    `json:"scannedCount"`
	Issues       []CorruptionIssue      `json:"issues"`
	CountsByType map[CorruptionType]int `json:"countsByType"`
}

// IssuesOfType filters the report's issues for one corruption type.
func (r *CorruptionReport) IssuesOfType(t CorruptionType) []CorruptionIssue {
	var out []CorruptionIssue
	for _, issue := range r.Issues {
		if issue.CorruptionType == t {
			out = append(out, issue)
		}
	}
	return out
}

// ApprovedRepairConfig is the explicit, pre-approved policy set. Corruption
// types absent from Policies are never acted on.
type ApprovedRepairConfig struct {
	ApprovedBy string                          `json:"approvedBy"`
	ApprovedAt time.Time                       `json:"approvedAt"`
	Reason     string                          `json:"reason,omitempty"`
	Policies   map[CorruptionType]RepairPolicy `json:"policies"`
}

// RepairObjectResult is one object-level outcome within a type batch.
type RepairObjectResult struct {
	EntryID string        `json:"entryID"`
	Outcome ObjectOutcome `json:"outcome"`
	Detail  string        `json:"detail,omitempty"`
}

// RepairTypeResult is the outcome of one corruption-type batch.
type RepairTypeResult struct {
	CorruptionType CorruptionType       `json:"corruptionType"`
	Policy         RepairPolicy         `json:"policy"`
	Status         RepairStatus         `json:"status"`
	Repaired       int                  `json:"repaired"`
	Quarantined    int                  `json:"quarantined"`
	Failed         int                  `json:"failed"`
	Objects        []RepairObjectResult `json:"objects,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// InvariantResult records one verification check after repair execution.
// Critical failures block overall success; warnings are recorded only.
type InvariantResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Critical bool   `json:"critical"`
	Detail   string `json:"detail,omitempty"`
}

// RepairExecutionResult is the JSON-serializable report of one repair run.
type RepairExecutionResult struct {
	RunID         string             `json:"runID"`
	StartedAt     time.Time          `json:"startedAt"`
	FinishedAt    time.Time          `json:"finishedAt"`
	OverallStatus RepairStatus       `json:"overallStatus"`
	TypeResults   []RepairTypeResult `json:"typeResults"`
	SkippedTypes  []CorruptionType   `json:"skippedTypes,omitempty"` // Present in report, not approved
	Verification  []InvariantResult  `json:"verification"`
	KnownIssueIDs []string           `json:"knownIssueIDs,omitempty"` // Entry ids known corrupted before the run
}

// TotalRepaired sums repaired objects across type batches.
func (r *RepairExecutionResult) TotalRepaired() int {
	n := 0
	for _, tr := range r.TypeResults {
		n += tr.Repaired
	}
	return n
}

// TotalQuarantined sums quarantined objects across type batches.
func (r *RepairExecutionResult) TotalQuarantined() int {
	n := 0
	for _, tr := range r.TypeResults {
		n += tr.Quarantined
	}
	return n
}

// RepairValidationResult is the post-run consistency verdict: a fresh scan
// must surface no corruption beyond what was already known or quarantined.
type RepairValidationResult struct {
	RunID         string            `json:"runID"`
	ValidatedAt   time.Time         `json:"validatedAt"`
	Passed        bool              `json:"passed"`
	Checks        []InvariantResult `json:"checks"`
	NewCorruption []CorruptionIssue `json:"newCorruption,omitempty"`
}
