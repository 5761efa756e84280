package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/middleware"
	"github.com/erpcore/ledger_governance/internal/utils/accounting"
)

const defaultScanBatchSize = 200

// linkageService validates source linkage against the allowlist registry and
// the referenced business rows, scans for orphaned entries and backfills
// broken linkage.
type linkageService struct {
	registry     *domain.SourceRegistry
	entryRepo    portsrepo.EntryRepositoryFacade
	sourceRepo   portsrepo.SourceRepositoryFacade
	authoritySvc portssvc.AuthoritySvcFacade
	auditSvc     portssvc.AuditTrailSvcFacade
	scanWorkers  int
}

// NewLinkageService creates a new LinkageService. scanWorkers sizes the
// worker pool used by ScanOrphanedEntries.
func NewLinkageService(
	registry *domain.SourceRegistry,
	entryRepo portsrepo.EntryRepositoryFacade,
	sourceRepo portsrepo.SourceRepositoryFacade,
	authoritySvc portssvc.AuthoritySvcFacade,
	auditSvc portssvc.AuditTrailSvcFacade,
	scanWorkers int,
) portssvc.LinkageSvcFacade {
	if scanWorkers <= 0 {
		scanWorkers = 8
	}
	return &linkageService{
		registry:     registry,
		entryRepo:    entryRepo,
		sourceRepo:   sourceRepo,
		authoritySvc: authoritySvc,
		auditSvc:     auditSvc,
		scanWorkers:  scanWorkers,
	}
}

var _ portssvc.LinkageSvcFacade = (*linkageService)(nil)

// ValidateLinkage reports whether the triple is allowlisted and its row
// exists. A false return carries no error: absence is an answer, not a
// failure.
func (s *linkageService) ValidateLinkage(ctx context.Context, ref domain.SourceRef) (bool, error) {
	if !ref.IsComplete() {
		return false, nil
	}
	def, ok := s.registry.Lookup(ref.Module, ref.Model)
	if !ok {
		return false, nil
	}
	return s.sourceRepo.SourceExists(ctx, def, ref.ID)
}

// CreateLinkage is the strict guard used before persisting a source
// reference: any defect raises a validation error with full context.
func (s *linkageService) CreateLinkage(ctx context.Context, ref domain.SourceRef) error {
	if !ref.IsComplete() {
		return apperrors.NewValidationError("source linkage is incomplete", map[string]any{
			"source_module": ref.Module,
			"source_model":  ref.Model,
			"source_id":     ref.ID,
		})
	}
	def, ok := s.registry.Lookup(ref.Module, ref.Model)
	if !ok {
		return apperrors.NewValidationError(
			fmt.Sprintf("source %s is not an allowlisted linkage target", ref.Qualified()),
			map[string]any{"source": ref.Qualified()},
		)
	}
	exists, err := s.sourceRepo.SourceExists(ctx, def, ref.ID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewValidationError(
			fmt.Sprintf("source row %s does not exist", ref.String()),
			map[string]any{"source": ref.String(), "table": def.Table},
		)
	}
	return nil
}

// ScanOrphanedEntries walks the whole ledger in batches, checking each entry
// for missing linkage, invalid linkage and balance defects. Existence lookups
// dominate the cost, so per-entry checks fan out to a worker pool.
func (s *linkageService) ScanOrphanedEntries(ctx context.Context, batchSize int) (*domain.CorruptionReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}

	pool, err := ants.NewPool(s.scanWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan worker pool: %w", err)
	}
	defer pool.Release()

	report := &domain.CorruptionReport{
		GeneratedAt:  time.Now().UTC(),
		CountsByType: map[domain.CorruptionType]int{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var scanErr error

	afterEntryID := ""
	for {
		entries, err := s.entryRepo.ListEntriesBatch(ctx, afterEntryID, batchSize)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		afterEntryID = entries[len(entries)-1].EntryID
		report.ScannedCount += len(entries)

		for _, entry := range entries {
			entry := entry
			wg.Add(1)
			if submitErr := pool.Submit(func() {
				defer wg.Done()
				issue, err := s.checkEntry(ctx, entry)
				mu.Lock()
				defer mu.Unlock()
				if err != nil && scanErr == nil {
					scanErr = err
					return
				}
				if issue != nil {
					report.Issues = append(report.Issues, *issue)
					report.CountsByType[issue.CorruptionType]++
				}
			}); submitErr != nil {
				wg.Done()
				return nil, fmt.Errorf("failed to submit scan task: %w", submitErr)
			}
		}
		wg.Wait()

		if scanErr != nil {
			return nil, scanErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	logger.Info("Orphaned-entry scan finished",
		slog.Int("scanned", report.ScannedCount),
		slog.Int("issues", len(report.Issues)),
	)
	return report, nil
}

// checkEntry classifies one entry's defect, if any. Missing linkage wins over
// invalid linkage; either linkage defect wins over imbalance so each entry
// appears in the report at most once.
func (s *linkageService) checkEntry(ctx context.Context, entry domain.JournalEntry) (*domain.CorruptionIssue, error) {
	ref := entry.SourceRef()
	if !ref.IsComplete() {
		return &domain.CorruptionIssue{
			EntryID:        entry.EntryID,
			EntryNumber:    entry.Number,
			CorruptionType: domain.CorruptionMissingLinkage,
			Detail:         "source linkage triple is incomplete",
		}, nil
	}

	def, allowlisted := s.registry.Lookup(ref.Module, ref.Model)
	if !allowlisted {
		return &domain.CorruptionIssue{
			EntryID:        entry.EntryID,
			EntryNumber:    entry.Number,
			CorruptionType: domain.CorruptionInvalidLinkage,
			Detail:         fmt.Sprintf("source %s is not allowlisted", ref.Qualified()),
		}, nil
	}
	exists, err := s.sourceRepo.SourceExists(ctx, def, ref.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &domain.CorruptionIssue{
			EntryID:        entry.EntryID,
			EntryNumber:    entry.Number,
			CorruptionType: domain.CorruptionInvalidLinkage,
			Detail:         fmt.Sprintf("source row %s no longer exists", ref.String()),
		}, nil
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	totalDebit, totalCredit := accounting.Totals(lines)
	if !totalDebit.Equal(totalCredit) {
		return &domain.CorruptionIssue{
			EntryID:        entry.EntryID,
			EntryNumber:    entry.Number,
			CorruptionType: domain.CorruptionUnbalanced,
			Detail:         fmt.Sprintf("debits %s do not equal credits %s", totalDebit.String(), totalCredit.String()),
		}, nil
	}
	return nil, nil
}

// BackfillSourceLinkage repoints an entry's source triple after strict
// validation. With dryRun set the validation runs but nothing is written.
func (s *linkageService) BackfillSourceLinkage(ctx context.Context, gov domain.GovernanceContext, entryID string, ref domain.SourceRef, dryRun bool) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.authoritySvc.ValidateAuthority(ctx, gov.Service, "JournalEntry", "backfill_linkage", gov.User); err != nil {
		return err
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	if err := s.CreateLinkage(ctx, ref); err != nil {
		return err
	}

	if dryRun {
		logger.Info("Backfill dry run passed validation",
			slog.String("entry_id", entryID),
			slog.String("source", ref.String()),
		)
		return nil
	}

	now := time.Now().UTC()
	if err := s.entryRepo.UpdateSourceLinkage(ctx, entryID, ref, gov.User, now); err != nil {
		return err
	}

	before := entry.SourceRef()
	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     "JournalEntry",
		ObjectID:      entryID,
		Operation:     domain.AuditOpBackfillLinkage,
		User:          gov.User,
		SourceService: gov.Service,
		BeforeData: map[string]any{
			"source_module": before.Module,
			"source_model":  before.Model,
			"source_id":     before.ID,
		},
		AfterData: map[string]any{
			"source_module": ref.Module,
			"source_model":  ref.Model,
			"source_id":     ref.ID,
		},
	})
	logger.Info("Source linkage backfilled",
		slog.String("entry_id", entryID),
		slog.String("source", ref.String()),
	)
	return nil
}
