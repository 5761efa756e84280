package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// repairOrder fixes the processing sequence of corruption types so runs are
// reproducible regardless of report map iteration.
var repairOrder = []domain.CorruptionType{
	domain.CorruptionMissingLinkage,
	domain.CorruptionInvalidLinkage,
	domain.CorruptionUnbalanced,
}

// repairExecutionService runs pre-approved repair policies over a corruption
// report. It never invents fixes: RELINK only follows a verified suggested
// reference, and everything it cannot verify goes to quarantine for a human.
type repairExecutionService struct {
	entryRepo      portsrepo.EntryRepositoryFacade
	quarantineRepo portsrepo.QuarantineRepositoryFacade
	authoritySvc   portssvc.AuthoritySvcFacade
	linkageSvc     portssvc.LinkageSvcFacade
	quarantineSvc  portssvc.QuarantineSvcFacade
	auditSvc       portssvc.AuditTrailSvcFacade
}

// NewRepairExecutionService creates a new RepairExecutionService.
func NewRepairExecutionService(
	entryRepo portsrepo.EntryRepositoryFacade,
	quarantineRepo portsrepo.QuarantineRepositoryFacade,
	authoritySvc portssvc.AuthoritySvcFacade,
	linkageSvc portssvc.LinkageSvcFacade,
	quarantineSvc portssvc.QuarantineSvcFacade,
	auditSvc portssvc.AuditTrailSvcFacade,
) portssvc.RepairExecutionSvcFacade {
	return &repairExecutionService{
		entryRepo:      entryRepo,
		quarantineRepo: quarantineRepo,
		authoritySvc:   authoritySvc,
		linkageSvc:     linkageSvc,
		quarantineSvc:  quarantineSvc,
		auditSvc:       auditSvc,
	}
}

var _ portssvc.RepairExecutionSvcFacade = (*repairExecutionService)(nil)

// ExecuteApprovedRepairs processes the report one corruption type at a time.
// Types without an approved policy are skipped and reported, never defaulted.
func (s *repairExecutionService) ExecuteApprovedRepairs(ctx context.Context, gov domain.GovernanceContext, report domain.CorruptionReport, config domain.ApprovedRepairConfig) (*domain.RepairExecutionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.authoritySvc.ValidateAuthority(ctx, gov.Service, "JournalEntry", "repair", gov.User); err != nil {
		return nil, err
	}
	if config.ApprovedBy == "" {
		return nil, apperrors.NewValidationError("repair config must name its approver", nil)
	}
	for corruptionType, policy := range config.Policies {
		if !domain.KnownPolicy(policy) {
			return nil, apperrors.NewGovernanceError(
				fmt.Sprintf("unknown repair policy %q for corruption type %s", policy, corruptionType),
				map[string]any{"corruption_type": string(corruptionType), "policy": string(policy)},
			)
		}
	}

	result := &domain.RepairExecutionResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	for _, issue := range report.Issues {
		result.KnownIssueIDs = append(result.KnownIssueIDs, issue.EntryID)
	}

	for _, corruptionType := range repairOrder {
		issues := report.IssuesOfType(corruptionType)
		if len(issues) == 0 {
			continue
		}
		policy, approved := config.Policies[corruptionType]
		if !approved {
			result.SkippedTypes = append(result.SkippedTypes, corruptionType)
			logger.Info("Skipping unapproved corruption type",
				slog.String("corruption_type", string(corruptionType)),
				slog.Int("issues", len(issues)),
			)
			continue
		}
		result.TypeResults = append(result.TypeResults, s.executeTypeBatch(ctx, gov, result.RunID, corruptionType, policy, issues))
	}

	result.Verification = s.verifyInvariants(ctx, result)
	result.FinishedAt = time.Now().UTC()
	result.OverallStatus = overallStatus(result)

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     "JournalEntry",
		ObjectID:      result.RunID,
		Operation:     domain.AuditOpRepair,
		User:          gov.User,
		SourceService: gov.Service,
		Context: map[string]any{
			"run_id":         result.RunID,
			"approved_by":    config.ApprovedBy,
			"overall_status": string(result.OverallStatus),
			"repaired":       result.TotalRepaired(),
			"quarantined":    result.TotalQuarantined(),
		},
	})
	logger.Info("Repair run finished",
		slog.String("run_id", result.RunID),
		slog.String("overall_status", string(result.OverallStatus)),
		slog.Int("repaired", result.TotalRepaired()),
		slog.Int("quarantined", result.TotalQuarantined()),
	)
	return result, nil
}

// executeTypeBatch processes all issues of one corruption type. A panic in
// the batch marks it FAILED and records the rollback event; other types still
// run.
func (s *repairExecutionService) executeTypeBatch(ctx context.Context, gov domain.GovernanceContext, runID string, corruptionType domain.CorruptionType, policy domain.RepairPolicy, issues []domain.CorruptionIssue) (typeResult domain.RepairTypeResult) {
	logger := middleware.GetLoggerFromCtx(ctx)

	typeResult = domain.RepairTypeResult{
		CorruptionType: corruptionType,
		Policy:         policy,
		Status:         domain.RepairInProgress,
	}

	defer func() {
		if r := recover(); r != nil {
			typeResult.Status = domain.RepairFailed
			typeResult.Error = fmt.Sprintf("panic during repair: %v", r)
			logger.Error("Repair batch panicked",
				slog.String("run_id", runID),
				slog.String("corruption_type", string(corruptionType)),
				slog.Any("panic", r),
			)
			s.auditSvc.Record(ctx, domain.AuditRecord{
				ModelName:     "JournalEntry",
				ObjectID:      runID,
				Operation:     domain.AuditOpRepairRollback,
				User:          gov.User,
				SourceService: gov.Service,
				Context: map[string]any{
					"corruption_type": string(corruptionType),
					"error":           typeResult.Error,
				},
			})
		}
	}()

	for _, issue := range issues {
		outcome := s.repairObject(ctx, gov, runID, policy, issue)
		typeResult.Objects = append(typeResult.Objects, outcome)
		switch outcome.Outcome {
		case domain.OutcomeRepaired:
			typeResult.Repaired++
		case domain.OutcomeQuarantined:
			typeResult.Quarantined++
		case domain.OutcomeFailed:
			typeResult.Failed++
		}
	}

	if typeResult.Failed > 0 {
		typeResult.Status = domain.RepairCompletedWithIssues
	} else {
		typeResult.Status = domain.RepairCompleted
	}
	return typeResult
}

// repairObject applies the approved policy to a single flagged entry.
func (s *repairExecutionService) repairObject(ctx context.Context, gov domain.GovernanceContext, runID string, policy domain.RepairPolicy, issue domain.CorruptionIssue) domain.RepairObjectResult {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch policy {
	case domain.PolicyRelink:
		if issue.SuggestedRef != nil {
			valid, err := s.linkageSvc.ValidateLinkage(ctx, *issue.SuggestedRef)
			if err != nil {
				return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeFailed, Detail: err.Error()}
			}
			if valid {
				if err := s.entryRepo.UpdateSourceLinkage(ctx, issue.EntryID, *issue.SuggestedRef, gov.User, time.Now().UTC()); err != nil {
					return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeFailed, Detail: err.Error()}
				}
				s.auditSvc.Record(ctx, domain.AuditRecord{
					ModelName:     "JournalEntry",
					ObjectID:      issue.EntryID,
					Operation:     domain.AuditOpRepair,
					User:          gov.User,
					SourceService: gov.Service,
					Context: map[string]any{
						"run_id":      runID,
						"policy":      string(policy),
						"relinked_to": issue.SuggestedRef.String(),
					},
				})
				return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeRepaired, Detail: "relinked to " + issue.SuggestedRef.String()}
			}
			logger.Warn("Suggested linkage failed verification, quarantining instead",
				slog.String("entry_id", issue.EntryID),
				slog.String("suggested", issue.SuggestedRef.String()),
			)
		}
		// No verifiable candidate: isolate instead of guessing.
		return s.quarantineIssue(ctx, gov, issue, "relink candidate missing or unverifiable")

	case domain.PolicyQuarantine:
		return s.quarantineIssue(ctx, gov, issue, "quarantined per approved policy")

	case domain.PolicyAdjustment, domain.PolicyRebuild:
		// Both policies would rewrite ledger amounts; that never happens
		// unattended. The object is parked for manual execution.
		return s.quarantineIssue(ctx, gov, issue, fmt.Sprintf("%s requires manual execution", policy))
	}

	return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeFailed, Detail: "unknown policy " + string(policy)}
}

func (s *repairExecutionService) quarantineIssue(ctx context.Context, gov domain.GovernanceContext, issue domain.CorruptionIssue, reason string) domain.RepairObjectResult {
	_, err := s.quarantineSvc.QuarantineData(ctx, gov, dto.QuarantineRequest{
		ModelName:      "JournalEntry",
		ObjectID:       issue.EntryID,
		CorruptionType: string(issue.CorruptionType),
		Reason:         reason + ": " + issue.Detail,
	})
	if err != nil {
		return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeFailed, Detail: err.Error()}
	}
	return domain.RepairObjectResult{EntryID: issue.EntryID, Outcome: domain.OutcomeQuarantined, Detail: reason}
}

// verifyInvariants re-checks the ledger after the run. Entries parked in open
// quarantine are expected to still look corrupted and do not fail the check.
func (s *repairExecutionService) verifyInvariants(ctx context.Context, result *domain.RepairExecutionResult) []domain.InvariantResult {
	logger := middleware.GetLoggerFromCtx(ctx)
	var checks []domain.InvariantResult

	openQuarantined, err := s.quarantineRepo.ListOpenObjectIDs(ctx, "JournalEntry")
	if err != nil {
		logger.Error("Failed to list open quarantine records for verification", slog.String("error", err.Error()))
		openQuarantined = map[string]bool{}
	}

	missing, err := s.entryRepo.CountMissingLinkage(ctx)
	checks = append(checks, countInvariant("no_missing_source_linkage", missing, len(openQuarantined), true, err))

	unbalanced, err := s.entryRepo.CountUnbalanced(ctx)
	checks = append(checks, countInvariant("no_unbalanced_entries", unbalanced, len(openQuarantined), true, err))

	checks = append(checks, domain.InvariantResult{
		Name:     "all_report_types_processed",
		Passed:   len(result.SkippedTypes) == 0,
		Critical: false,
		Detail:   fmt.Sprintf("%d corruption types skipped without an approved policy", len(result.SkippedTypes)),
	})
	return checks
}

func countInvariant(name string, count, quarantined int, critical bool, err error) domain.InvariantResult {
	if err != nil {
		return domain.InvariantResult{Name: name, Passed: false, Critical: critical, Detail: "check failed: " + err.Error()}
	}
	return domain.InvariantResult{
		Name:     name,
		Passed:   count <= quarantined,
		Critical: critical,
		Detail:   fmt.Sprintf("%d defects counted, %d objects in open quarantine", count, quarantined),
	}
}

// overallStatus folds batch statuses and critical verification into the run
// verdict.
func overallStatus(result *domain.RepairExecutionResult) domain.RepairStatus {
	status := domain.RepairCompleted
	for _, tr := range result.TypeResults {
		switch tr.Status {
		case domain.RepairFailed:
			return domain.RepairFailed
		case domain.RepairCompletedWithIssues:
			status = domain.RepairCompletedWithIssues
		}
	}
	for _, check := range result.Verification {
		if check.Critical && !check.Passed {
			status = domain.RepairCompletedWithIssues
		}
	}
	if len(result.SkippedTypes) > 0 && status == domain.RepairCompleted {
		status = domain.RepairCompletedWithIssues
	}
	return status
}
