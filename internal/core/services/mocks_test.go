package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
)

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, prefix string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, lines, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) CreateReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.EntryLine, prefix string, originalEntryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, reversal, lines, prefix, originalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesBatch(ctx context.Context, afterEntryID string, limit int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, afterEntryID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) UpdateSourceLinkage(ctx context.Context, entryID string, ref domain.SourceRef, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, ref, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) CountMissingLinkage(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) CountUnbalanced(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock IdempotencyRepository ---
type MockIdempotencyRepository struct {
	mock.Mock
}

var _ portsrepo.IdempotencyRepositoryFacade = (*MockIdempotencyRepository)(nil)

func (m *MockIdempotencyRepository) AcquireOrGet(ctx context.Context, rec domain.IdempotencyRecord) (*domain.IdempotencyRecord, bool, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyRepository) FindRecord(ctx context.Context, operationType, key string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, operationType, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyRepository) FinalizeRecord(ctx context.Context, recordID string, resultData map[string]any) error {
	args := m.Called(ctx, recordID, resultData)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) DeleteRecord(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	args := m.Called(ctx, cutoff, batchSize)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdempotencyRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	args := m.Called(ctx, cutoff, batchSize)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock DelegationRepository ---
type MockDelegationRepository struct {
	mock.Mock
}

var _ portsrepo.DelegationRepositoryFacade = (*MockDelegationRepository)(nil)

func (m *MockDelegationRepository) SaveDelegation(ctx context.Context, d domain.AuthorityDelegation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDelegationRepository) FindDelegationByID(ctx context.Context, delegationID string) (*domain.AuthorityDelegation, error) {
	args := m.Called(ctx, delegationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorityDelegation), args.Error(1)
}

func (m *MockDelegationRepository) FindActiveDelegation(ctx context.Context, fromService, toService, modelName string, now time.Time) (*domain.AuthorityDelegation, error) {
	args := m.Called(ctx, fromService, toService, modelName, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorityDelegation), args.Error(1)
}

func (m *MockDelegationRepository) RevokeDelegation(ctx context.Context, delegationID string, revokedAt time.Time) error {
	args := m.Called(ctx, delegationID, revokedAt)
	return args.Error(0)
}

// --- Mock QuarantineRepository ---
type MockQuarantineRepository struct {
	mock.Mock
}

var _ portsrepo.QuarantineRepositoryFacade = (*MockQuarantineRepository)(nil)

func (m *MockQuarantineRepository) SaveRecord(ctx context.Context, rec domain.QuarantineRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockQuarantineRepository) FindRecordByID(ctx context.Context, quarantineID string) (*domain.QuarantineRecord, error) {
	args := m.Called(ctx, quarantineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuarantineRecord), args.Error(1)
}

func (m *MockQuarantineRepository) FindOpenRecord(ctx context.Context, modelName, objectID string, corruptionType domain.CorruptionType) (*domain.QuarantineRecord, error) {
	args := m.Called(ctx, modelName, objectID, corruptionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuarantineRecord), args.Error(1)
}

func (m *MockQuarantineRepository) UpdateStatus(ctx context.Context, quarantineID string, status domain.QuarantineStatus, resolutionNotes string, resolvedAt *time.Time, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, quarantineID, status, resolutionNotes, resolvedAt, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockQuarantineRepository) Summary(ctx context.Context) ([]domain.CorruptionSummaryRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorruptionSummaryRow), args.Error(1)
}

func (m *MockQuarantineRepository) ListOpenObjectIDs(ctx context.Context, modelName string) (map[string]bool, error) {
	args := m.Called(ctx, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveRecord(ctx context.Context, rec domain.AuditRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, modelName, objectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock SourceRepository ---
type MockSourceRepository struct {
	mock.Mock
}

var _ portsrepo.SourceRepositoryFacade = (*MockSourceRepository)(nil)

func (m *MockSourceRepository) SourceExists(ctx context.Context, def domain.SourceDefinition, objectID string) (bool, error) {
	args := m.Called(ctx, def, objectID)
	return args.Bool(0), args.Error(1)
}

// --- Mock AuthorityService ---
type MockAuthorityService struct {
	mock.Mock
}

var _ portssvc.AuthoritySvcFacade = (*MockAuthorityService)(nil)

func (m *MockAuthorityService) ValidateAuthority(ctx context.Context, serviceName, modelName, operation, userID string) error {
	args := m.Called(ctx, serviceName, modelName, operation, userID)
	return args.Error(0)
}

func (m *MockAuthorityService) DelegateAuthority(ctx context.Context, gov domain.GovernanceContext, req dto.DelegateAuthorityRequest) (*domain.AuthorityDelegation, error) {
	args := m.Called(ctx, gov, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorityDelegation), args.Error(1)
}

func (m *MockAuthorityService) RevokeDelegation(ctx context.Context, gov domain.GovernanceContext, delegationID, reason string) error {
	args := m.Called(ctx, gov, delegationID, reason)
	return args.Error(0)
}

// --- Mock IdempotencyService ---
type MockIdempotencyService struct {
	mock.Mock
}

var _ portssvc.IdempotencySvcFacade = (*MockIdempotencyService)(nil)

func (m *MockIdempotencyService) CheckAndRecord(ctx context.Context, operationType, key string, resultData map[string]any, userID string, expiresInHours int) (bool, *domain.IdempotencyRecord, map[string]any, error) {
	args := m.Called(ctx, operationType, key, resultData, userID, expiresInHours)
	var record *domain.IdempotencyRecord
	if args.Get(1) != nil {
		record = args.Get(1).(*domain.IdempotencyRecord)
	}
	var stored map[string]any
	if args.Get(2) != nil {
		stored = args.Get(2).(map[string]any)
	}
	return args.Bool(0), record, stored, args.Error(3)
}

func (m *MockIdempotencyService) AwaitResult(ctx context.Context, operationType, key string) (map[string]any, error) {
	args := m.Called(ctx, operationType, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockIdempotencyService) Finalize(ctx context.Context, recordID string, resultData map[string]any) error {
	args := m.Called(ctx, recordID, resultData)
	return args.Error(0)
}

func (m *MockIdempotencyService) Release(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *MockIdempotencyService) CleanupExpiredRecords(ctx context.Context, req dto.CleanupRequest) (*dto.CleanupReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CleanupReport), args.Error(1)
}

// --- Mock LinkageService ---
type MockLinkageService struct {
	mock.Mock
}

var _ portssvc.LinkageSvcFacade = (*MockLinkageService)(nil)

func (m *MockLinkageService) ValidateLinkage(ctx context.Context, ref domain.SourceRef) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkageService) CreateLinkage(ctx context.Context, ref domain.SourceRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockLinkageService) ScanOrphanedEntries(ctx context.Context, batchSize int) (*domain.CorruptionReport, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorruptionReport), args.Error(1)
}

func (m *MockLinkageService) BackfillSourceLinkage(ctx context.Context, gov domain.GovernanceContext, entryID string, ref domain.SourceRef, dryRun bool) error {
	args := m.Called(ctx, gov, entryID, ref, dryRun)
	return args.Error(0)
}

// --- Mock QuarantineService ---
type MockQuarantineService struct {
	mock.Mock
}

var _ portssvc.QuarantineSvcFacade = (*MockQuarantineService)(nil)

func (m *MockQuarantineService) QuarantineData(ctx context.Context, gov domain.GovernanceContext, req dto.QuarantineRequest) (*domain.QuarantineRecord, error) {
	args := m.Called(ctx, gov, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuarantineRecord), args.Error(1)
}

func (m *MockQuarantineService) MarkUnderReview(ctx context.Context, gov domain.GovernanceContext, quarantineID string) error {
	args := m.Called(ctx, gov, quarantineID)
	return args.Error(0)
}

func (m *MockQuarantineService) ResolveQuarantine(ctx context.Context, gov domain.GovernanceContext, quarantineID, resolutionNotes string) error {
	args := m.Called(ctx, gov, quarantineID, resolutionNotes)
	return args.Error(0)
}

func (m *MockQuarantineService) GetCorruptionSummary(ctx context.Context) ([]domain.CorruptionSummaryRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorruptionSummaryRow), args.Error(1)
}

// --- Mock AuditTrailService ---
type MockAuditTrailService struct {
	mock.Mock
}

var _ portssvc.AuditTrailSvcFacade = (*MockAuditTrailService)(nil)

func (m *MockAuditTrailService) Record(ctx context.Context, rec domain.AuditRecord) {
	m.Called(ctx, rec)
}

func (m *MockAuditTrailService) ListForObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, modelName, objectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}
