package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
	"github.com/erpcore/ledger_governance/internal/utils/accounting"
	"github.com/erpcore/ledger_governance/internal/utils/concurrency"
)

// Idempotency key layout: JE:{module}:{model}:{id}:{operation} for entry
// creation, REV:{module}:{model}:{id}:{originalEntryID} for reversals.
const (
	entryKeyPrefix    = "JE"
	reversalKeyPrefix = "REV"
	keyParts          = 5
)

// GenerateIdempotencyKey builds the deterministic entry-creation key for a
// source object and operation.
func GenerateIdempotencyKey(module, model, id, operation string) string {
	return strings.Join([]string{entryKeyPrefix, module, model, id, operation}, ":")
}

// GenerateReversalKey builds the deterministic reversal key. Including the
// original entry id keys each reversal to the entry it offsets, so reversing
// a re-created entry is never confused with reversing its predecessor.
func GenerateReversalKey(module, model, id, originalEntryID string) string {
	return strings.Join([]string{reversalKeyPrefix, module, model, id, originalEntryID}, ":")
}

// ValidateIdempotencyKey checks the structural rules for entry-creation keys:
// exactly five colon-separated parts, the JE marker first, a positive numeric
// object id, nothing empty.
func ValidateIdempotencyKey(key string) error {
	parts := strings.Split(key, ":")
	if len(parts) != keyParts {
		return apperrors.NewValidationError(
			fmt.Sprintf("idempotency key must have %d colon-separated parts, got %d", keyParts, len(parts)),
			map[string]any{"key": key},
		)
	}
	if parts[0] != entryKeyPrefix {
		return apperrors.NewValidationError("idempotency key must start with "+entryKeyPrefix, map[string]any{"key": key})
	}
	for i, p := range parts {
		if p == "" {
			return apperrors.NewValidationError(
				fmt.Sprintf("idempotency key part %d is empty", i+1),
				map[string]any{"key": key},
			)
		}
	}
	id, err := strconv.Atoi(parts[3])
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("idempotency key object id must be a positive integer", map[string]any{"key": key})
	}
	return nil
}

// accountingGatewayService is the single sanctioned write path into the
// ledger. Every entry it creates is posted and locked atomically; the only
// mutation it ever performs afterwards is linking a reversal.
type accountingGatewayService struct {
	entryRepo      portsrepo.EntryRepositoryFacade
	periodRepo     portsrepo.PeriodRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	registry       *domain.SourceRegistry
	authoritySvc   portssvc.AuthoritySvcFacade
	idempotencySvc portssvc.IdempotencySvcFacade
	linkageSvc     portssvc.LinkageSvcFacade
	auditSvc       portssvc.AuditTrailSvcFacade
	expiryHours    int
	proximityDays  int
}

// NewAccountingGatewayService creates a new AccountingGatewayService.
// expiryHours sets the idempotency window; proximityDays triggers a warning
// when posting close to the period end.
func NewAccountingGatewayService(
	repos portsrepo.RepositoryProvider,
	registry *domain.SourceRegistry,
	authoritySvc portssvc.AuthoritySvcFacade,
	idempotencySvc portssvc.IdempotencySvcFacade,
	linkageSvc portssvc.LinkageSvcFacade,
	auditSvc portssvc.AuditTrailSvcFacade,
	expiryHours int,
	proximityDays int,
) portssvc.AccountingGatewaySvcFacade {
	if expiryHours <= 0 {
		expiryHours = defaultExpiryHours
	}
	if proximityDays <= 0 {
		proximityDays = 30
	}
	return &accountingGatewayService{
		entryRepo:      repos.EntryRepo,
		periodRepo:     repos.PeriodRepo,
		accountRepo:    repos.AccountRepo,
		registry:       registry,
		authoritySvc:   authoritySvc,
		idempotencySvc: idempotencySvc,
		linkageSvc:     linkageSvc,
		auditSvc:       auditSvc,
		expiryHours:    expiryHours,
		proximityDays:  proximityDays,
	}
}

var _ portssvc.AccountingGatewaySvcFacade = (*accountingGatewayService)(nil)

// CreateJournalEntry validates authority, balance, linkage, period and
// accounts, then posts the entry exactly once for its idempotency key.
func (s *accountingGatewayService) CreateJournalEntry(ctx context.Context, gov domain.GovernanceContext, req dto.CreateEntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	ref := req.SourceRef()

	// Authority runs first so a violating service learns nothing about the
	// rest of the request's validity.
	if err := s.authoritySvc.ValidateAuthority(ctx, gov.Service, req.SourceModel, "create", gov.User); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lines, err := s.buildLines(req, gov.User, now)
	if err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = GenerateIdempotencyKey(ref.Module, ref.Model, ref.ID, "create")
	} else if err := ValidateIdempotencyKey(key); err != nil {
		return nil, err
	}

	isDuplicate, record, stored, err := s.idempotencySvc.CheckAndRecord(ctx,
		domain.OpJournalEntry, key,
		map[string]any{"status": domain.IdempotencyPending},
		gov.User, s.expiryHours)
	if err != nil {
		return nil, err
	}
	if isDuplicate {
		return s.resolveDuplicate(ctx, domain.OpJournalEntry, key, record, stored)
	}

	// From here the key is held: every failure path must release it so a
	// corrected retry is not locked out for the expiry window.
	entry, err := s.executeCreate(ctx, gov, req, ref, lines, key, now)
	if err != nil {
		s.failHeldOperation(ctx, gov, record.RecordID, domain.AuditOpCreateFailed, ref, err)
		return nil, err
	}

	s.finalize(ctx, record.RecordID, entry)
	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     "JournalEntry",
		ObjectID:      entry.EntryID,
		Operation:     domain.AuditOpCreate,
		User:          gov.User,
		SourceService: gov.Service,
		AfterData: map[string]any{
			"number":       entry.Number,
			"source":       ref.String(),
			"total_debit":  entry.TotalDebit.String(),
			"total_credit": entry.TotalCredit.String(),
		},
	})
	logger.Info("Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("number", entry.Number),
		slog.String("source", ref.String()),
	)
	return entry, nil
}

// executeCreate runs the validations that need repository access and persists
// the entry. Split out so CreateJournalEntry's key-release handling stays in
// one place.
func (s *accountingGatewayService) executeCreate(ctx context.Context, gov domain.GovernanceContext, req dto.CreateEntryRequest, ref domain.SourceRef, lines []domain.EntryLine, key string, now time.Time) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.linkageSvc.CreateLinkage(ctx, ref); err != nil {
		return nil, err
	}
	def, _ := s.registry.Lookup(ref.Module, ref.Model)

	period, err := s.resolvePeriod(ctx, req.PeriodID, req.Date)
	if err != nil {
		return nil, err
	}
	if !period.AcceptsPosting(req.Date) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("period %s does not accept postings dated %s", period.Name, req.Date.Format("2006-01-02")),
			map[string]any{"period_id": period.PeriodID, "period_status": string(period.Status)},
		)
	}
	if daysLeft := int(period.EndDate.Sub(req.Date).Hours() / 24); daysLeft >= 0 && daysLeft <= s.proximityDays {
		logger.Warn("Posting close to period end",
			slog.String("period_id", period.PeriodID),
			slog.Int("days_until_close", daysLeft),
		)
	}

	// Stock movements carry their own physical movement date; a movement
	// outside the posting period means the ledger and the warehouse disagree
	// about when the goods moved.
	if def.Critical && req.MovementDate != nil && !period.ContainsDate(*req.MovementDate) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("movement date %s falls outside period %s", req.MovementDate.Format("2006-01-02"), period.Name),
			map[string]any{"period_id": period.PeriodID, "movement_date": req.MovementDate.Format("2006-01-02")},
		)
	}

	if err := s.verifyAccounts(ctx, lines); err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.Totals(lines)
	entryType := domain.EntryType(req.EntryType)
	if entryType == "" {
		entryType = domain.EntryAutomatic
	}
	entry := domain.JournalEntry{
		EntryID:          uuid.NewString(),
		EntryDate:        req.Date,
		EntryType:        entryType,
		Status:           domain.EntryPosted,
		Description:      req.Description,
		Reference:        req.Reference,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		SourceModule:     ref.Module,
		SourceModel:      ref.Model,
		SourceID:         ref.ID,
		PeriodID:         period.PeriodID,
		IdempotencyKey:   key,
		IsLocked:         true,
		CreatedByService: gov.Service,
		PostedBy:         gov.User,
		TotalDebit:       totalDebit,
		TotalCredit:      totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     gov.User,
			LastUpdatedAt: now,
			LastUpdatedBy: gov.User,
		},
	}

	var saved *domain.JournalEntry
	err = concurrency.RetryOnConcurrencyError(ctx, concurrency.DefaultRetryConfig(), func() error {
		var createErr error
		saved, createErr = s.entryRepo.CreateEntry(ctx, entry, lines, def.Prefix)
		return createErr
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// CreateReversalEntry posts the offsetting entry for a posted original,
// exactly once per (original, key).
func (s *accountingGatewayService) CreateReversalEntry(ctx context.Context, gov domain.GovernanceContext, originalEntryID string, req dto.CreateReversalRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, originalEntryID)
	if err != nil {
		return nil, err
	}

	if err := s.authoritySvc.ValidateAuthority(ctx, gov.Service, original.SourceModel, "reverse", gov.User); err != nil {
		return nil, err
	}

	if original.IsReversed() {
		return nil, apperrors.NewIdempotencyError("entry "+originalEntryID+" is already reversed", map[string]any{
			"entry_id":          originalEntryID,
			"reversal_entry_id": *original.ReversalEntryID,
		})
	}
	if !original.CanBeReversed() {
		return nil, apperrors.NewValidationError("entry "+originalEntryID+" cannot be reversed", map[string]any{
			"entry_id":   originalEntryID,
			"entry_type": string(original.EntryType),
			"status":     string(original.Status),
		})
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, originalEntryID)
	if err != nil {
		return nil, err
	}
	mirrored, err := accounting.MirrorLines(originalLines, req.PartialAmount)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"entry_id": originalEntryID})
	}

	ref := original.SourceRef()
	key := req.IdempotencyKey
	if key == "" {
		key = GenerateReversalKey(ref.Module, ref.Model, ref.ID, originalEntryID)
	}

	isDuplicate, record, stored, err := s.idempotencySvc.CheckAndRecord(ctx,
		domain.OpJournalEntryReversal, key,
		map[string]any{"status": domain.IdempotencyPending},
		gov.User, s.expiryHours)
	if err != nil {
		return nil, err
	}
	if isDuplicate {
		return s.resolveDuplicate(ctx, domain.OpJournalEntryReversal, key, record, stored)
	}

	reversal, err := s.executeReversal(ctx, gov, original, mirrored, key, req.Reason)
	if err != nil {
		s.failHeldOperation(ctx, gov, record.RecordID, domain.AuditOpReverseFailed, ref, err)
		return nil, err
	}

	s.finalize(ctx, record.RecordID, reversal)
	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     "JournalEntry",
		ObjectID:      reversal.EntryID,
		Operation:     domain.AuditOpReverse,
		User:          gov.User,
		SourceService: gov.Service,
		BeforeData:    map[string]any{"original_entry_id": originalEntryID, "original_number": original.Number},
		AfterData:     map[string]any{"number": reversal.Number, "reason": req.Reason},
	})
	logger.Info("Reversal entry created",
		slog.String("entry_id", reversal.EntryID),
		slog.String("number", reversal.Number),
		slog.String("original_entry_id", originalEntryID),
	)
	return reversal, nil
}

// executeReversal validates the posting period for today and persists the
// reversal.
func (s *accountingGatewayService) executeReversal(ctx context.Context, gov domain.GovernanceContext, original *domain.JournalEntry, mirrored []domain.EntryLine, key, reason string) (*domain.JournalEntry, error) {
	now := time.Now().UTC()

	period, err := s.periodRepo.FindPeriodForDate(ctx, now)
	if err != nil {
		return nil, err
	}
	if !period.AcceptsReversal(now) {
		return nil, apperrors.NewGovernanceError(
			fmt.Sprintf("period %s does not accept reversals", period.Name),
			map[string]any{"period_id": period.PeriodID, "period_status": string(period.Status)},
		)
	}

	totalDebit, totalCredit := accounting.Totals(mirrored)
	originalID := original.EntryID
	description := fmt.Sprintf("Reversal of %s: %s", original.Number, reason)
	def, _ := s.registry.Lookup(original.SourceModule, original.SourceModel)
	prefix := def.Prefix
	if prefix == "" {
		prefix = domain.PrefixForModel(original.SourceModel)
	}

	reversal := domain.JournalEntry{
		EntryID:          uuid.NewString(),
		EntryDate:        now,
		EntryType:        domain.EntryReversal,
		Status:           domain.EntryPosted,
		Description:      description,
		Reference:        original.Reference,
		Category:         original.Category,
		Subcategory:      original.Subcategory,
		SourceModule:     original.SourceModule,
		SourceModel:      original.SourceModel,
		SourceID:         original.SourceID,
		PeriodID:         period.PeriodID,
		IdempotencyKey:   key,
		IsLocked:         true,
		CreatedByService: gov.Service,
		PostedBy:         gov.User,
		ReversedEntryID:  &originalID,
		TotalDebit:       totalDebit,
		TotalCredit:      totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     gov.User,
			LastUpdatedAt: now,
			LastUpdatedBy: gov.User,
		},
	}

	for i := range mirrored {
		mirrored[i].LineID = uuid.NewString()
		mirrored[i].AuditFields = reversal.AuditFields
	}

	var saved *domain.JournalEntry
	err = concurrency.RetryOnConcurrencyError(ctx, concurrency.DefaultRetryConfig(), func() error {
		var createErr error
		saved, createErr = s.entryRepo.CreateReversal(ctx, reversal, mirrored, prefix, originalID)
		return createErr
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetEntry returns an entry with its lines loaded.
func (s *accountingGatewayService) GetEntry(ctx context.Context, gov domain.GovernanceContext, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

// buildLines converts request legs into validated domain lines.
func (s *accountingGatewayService) buildLines(req dto.CreateEntryRequest, userID string, now time.Time) ([]domain.EntryLine, error) {
	lines := make([]domain.EntryLine, len(req.Lines))
	for i, lr := range req.Lines {
		lines[i] = domain.EntryLine{
			LineID:      uuid.NewString(),
			AccountCode: lr.AccountCode,
			Debit:       lr.Debit,
			Credit:      lr.Credit,
			Description: lr.Description,
			CostCenter:  lr.CostCenter,
			Project:     lr.Project,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	if err := accounting.ValidateBalancedLines(lines); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	return lines, nil
}

// verifyAccounts requires every referenced account to exist and be active.
func (s *accountingGatewayService) verifyAccounts(ctx context.Context, lines []domain.EntryLine) error {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountCode] {
			seen[line.AccountCode] = true
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return err
	}
	for _, code := range codes {
		account, found := accounts[code]
		if !found {
			return apperrors.NewValidationError("account "+code+" does not exist", map[string]any{"account_code": code})
		}
		if !account.IsActive {
			return apperrors.NewValidationError("account "+code+" is inactive", map[string]any{"account_code": code})
		}
	}
	return nil
}

// resolvePeriod returns the explicit period or the one containing the date.
func (s *accountingGatewayService) resolvePeriod(ctx context.Context, periodID string, date time.Time) (*domain.AccountingPeriod, error) {
	if periodID != "" {
		return s.periodRepo.FindPeriodByID(ctx, periodID)
	}
	return s.periodRepo.FindPeriodForDate(ctx, date)
}

// resolveDuplicate turns a stored idempotency result into the entry it
// recorded, waiting out a still-pending holder first.
func (s *accountingGatewayService) resolveDuplicate(ctx context.Context, operationType, key string, record *domain.IdempotencyRecord, stored map[string]any) (*domain.JournalEntry, error) {
	if record.IsPending() {
		awaited, err := s.idempotencySvc.AwaitResult(ctx, operationType, key)
		if err != nil {
			return nil, err
		}
		stored = awaited
	}

	entryID, _ := stored["entry_id"].(string)
	if entryID == "" {
		return nil, apperrors.NewIdempotencyError("stored result for duplicate operation has no entry", map[string]any{
			"operation_type": operationType,
			"key":            key,
		})
	}
	return s.GetEntry(ctx, domain.GovernanceContext{}, entryID)
}

// finalize stores the real result on the held record. A finalize failure is
// logged only: the entry is committed and a later duplicate will still find
// it by entry id once the record expires.
func (s *accountingGatewayService) finalize(ctx context.Context, recordID string, entry *domain.JournalEntry) {
	result := map[string]any{
		"status":   domain.IdempotencyCompleted,
		"entry_id": entry.EntryID,
		"number":   entry.Number,
	}
	if err := s.idempotencySvc.Finalize(ctx, recordID, result); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to finalize idempotency record",
			slog.String("record_id", recordID),
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()),
		)
	}
}

// failHeldOperation releases the idempotency key after a failure and writes
// the failure audit event.
func (s *accountingGatewayService) failHeldOperation(ctx context.Context, gov domain.GovernanceContext, recordID, auditOp string, ref domain.SourceRef, opErr error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.idempotencySvc.Release(ctx, recordID); err != nil {
		logger.Error("Failed to release idempotency record after failure",
			slog.String("record_id", recordID),
			slog.String("error", err.Error()),
		)
	}
	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     "JournalEntry",
		Operation:     auditOp,
		User:          gov.User,
		SourceService: gov.Service,
		Context: map[string]any{
			"source": ref.String(),
			"error":  opErr.Error(),
		},
	})
}
