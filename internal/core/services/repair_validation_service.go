package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// repairValidationService re-verifies the ledger after a repair run by
// running a fresh corruption scan and comparing it against what the run
// already knew about.
type repairValidationService struct {
	linkageSvc     portssvc.LinkageSvcFacade
	quarantineRepo portsrepo.QuarantineRepositoryFacade
	scanBatchSize  int
}

// NewRepairValidationService creates a new RepairValidationService.
func NewRepairValidationService(linkageSvc portssvc.LinkageSvcFacade, quarantineRepo portsrepo.QuarantineRepositoryFacade, scanBatchSize int) portssvc.RepairValidationSvcFacade {
	if scanBatchSize <= 0 {
		scanBatchSize = defaultScanBatchSize
	}
	return &repairValidationService{
		linkageSvc:     linkageSvc,
		quarantineRepo: quarantineRepo,
		scanBatchSize:  scanBatchSize,
	}
}

var _ portssvc.RepairValidationSvcFacade = (*repairValidationService)(nil)

// ValidateRepairResults passes only when a fresh scan surfaces no corruption
// beyond what the run already knew or quarantined.
func (s *repairValidationService) ValidateRepairResults(ctx context.Context, result domain.RepairExecutionResult) (*domain.RepairValidationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	report, err := s.linkageSvc.ScanOrphanedEntries(ctx, s.scanBatchSize)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(result.KnownIssueIDs))
	for _, id := range result.KnownIssueIDs {
		known[id] = true
	}
	openQuarantined, err := s.quarantineRepo.ListOpenObjectIDs(ctx, "JournalEntry")
	if err != nil {
		return nil, err
	}

	validation := &domain.RepairValidationResult{
		RunID:       result.RunID,
		ValidatedAt: time.Now().UTC(),
	}
	for _, issue := range report.Issues {
		if !known[issue.EntryID] && !openQuarantined[issue.EntryID] {
			validation.NewCorruption = append(validation.NewCorruption, issue)
		}
	}

	validation.Checks = []domain.InvariantResult{
		{
			Name:     "no_new_corruption",
			Passed:   len(validation.NewCorruption) == 0,
			Critical: true,
			Detail:   fmt.Sprintf("%d entries corrupted that the run did not know about", len(validation.NewCorruption)),
		},
		{
			Name:     "repair_run_completed",
			Passed:   result.OverallStatus == domain.RepairCompleted || result.OverallStatus == domain.RepairCompletedWithIssues,
			Critical: true,
			Detail:   "overall status " + string(result.OverallStatus),
		},
		{
			Name:     "no_failed_type_batches",
			Passed:   noFailedBatches(result),
			Critical: false,
		},
	}

	validation.Passed = true
	for _, check := range validation.Checks {
		if check.Critical && !check.Passed {
			validation.Passed = false
		}
	}

	logger.Info("Repair validation finished",
		slog.String("run_id", result.RunID),
		slog.Bool("passed", validation.Passed),
		slog.Int("new_corruption", len(validation.NewCorruption)),
	)
	return validation, nil
}

func noFailedBatches(result domain.RepairExecutionResult) bool {
	for _, tr := range result.TypeResults {
		if tr.Status == domain.RepairFailed {
			return false
		}
	}
	return true
}
