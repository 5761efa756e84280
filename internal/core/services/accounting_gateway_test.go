package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/core/services"
	"github.com/erpcore/ledger_governance/internal/dto"
)

func TestGenerateIdempotencyKey(t *testing.T) {
	key := services.GenerateIdempotencyKey("students", "StudentFee", "42", "create")
	assert.Equal(t, "JE:students:StudentFee:42:create", key)
	assert.NoError(t, services.ValidateIdempotencyKey(key))
}

func TestGenerateReversalKey(t *testing.T) {
	key := services.GenerateReversalKey("students", "StudentFee", "42", "entry-1")
	assert.Equal(t, "REV:students:StudentFee:42:entry-1", key)
}

func TestValidateIdempotencyKey(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "JE:students:StudentFee:42:create", false},
		{"too few parts", "JE:students:StudentFee:42", true},
		{"too many parts", "JE:students:StudentFee:42:create:extra", true},
		{"wrong marker", "XX:students:StudentFee:42:create", true},
		{"empty part", "JE::StudentFee:42:create", true},
		{"non-numeric id", "JE:students:StudentFee:abc:create", true},
		{"zero id", "JE:students:StudentFee:0:create", true},
		{"negative id", "JE:students:StudentFee:-3:create", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := services.ValidateIdempotencyKey(tc.key)
			if tc.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type AccountingGatewayTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockPeriodRepo  *MockPeriodRepository
	mockAccountRepo *MockAccountRepository
	mockAuthority   *MockAuthorityService
	mockIdempotency *MockIdempotencyService
	mockLinkage     *MockLinkageService
	mockAudit       *MockAuditTrailService
	service         portssvc.AccountingGatewaySvcFacade
	gov             domain.GovernanceContext
	period          *domain.AccountingPeriod
	entryDate       time.Time
}

func (suite *AccountingGatewayTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockPeriodRepo = new(MockPeriodRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockAuthority = new(MockAuthorityService)
	suite.mockIdempotency = new(MockIdempotencyService)
	suite.mockLinkage = new(MockLinkageService)
	suite.mockAudit = new(MockAuditTrailService)

	registry, err := domain.NewSourceRegistry(domain.DefaultSourceDefinitions())
	suite.Require().NoError(err)

	suite.service = services.NewAccountingGatewayService(
		portsrepo.RepositoryProvider{
			EntryRepo:   suite.mockEntryRepo,
			PeriodRepo:  suite.mockPeriodRepo,
			AccountRepo: suite.mockAccountRepo,
		},
		registry,
		suite.mockAuthority,
		suite.mockIdempotency,
		suite.mockLinkage,
		suite.mockAudit,
		24, 3,
	)

	suite.gov = domain.GovernanceContext{Service: "StudentFinanceService", User: uuid.NewString()}
	now := time.Now().UTC()
	suite.period = &domain.AccountingPeriod{
		PeriodID:  uuid.NewString(),
		Name:      "current",
		StartDate: now.AddDate(0, 0, -40),
		EndDate:   now.AddDate(0, 0, 40),
		Status:    domain.PeriodOpen,
	}
	suite.entryDate = now.AddDate(0, 0, -5)

	suite.mockAudit.On("Record", mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return().Maybe()
}

func (suite *AccountingGatewayTestSuite) createRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		SourceModule: "students",
		SourceModel:  "StudentFee",
		SourceID:     "42",
		Date:         suite.entryDate,
		Description:  "Term fee posting",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(500)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(500)},
		},
	}
}

func (suite *AccountingGatewayTestSuite) activeAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"1000": {AccountCode: "1000", IsActive: true},
		"4000": {AccountCode: "4000", IsActive: true},
	}
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_Success() {
	ctx := context.Background()
	req := suite.createRequest()
	expectedKey := "JE:students:StudentFee:42:create"

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, expectedKey,
		map[string]any{"status": domain.IdempotencyPending}, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-1"}, nil, nil).Once()
	suite.mockLinkage.On("CreateLinkage", ctx, domain.SourceRef{Module: "students", Model: "StudentFee", ID: "42"}).Return(nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, req.Date).Return(suite.period, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1000", "4000"}).Return(suite.activeAccounts(), nil).Once()

	saved := &domain.JournalEntry{
		EntryID:  uuid.NewString(),
		Number:   "SF-0001",
		Status:   domain.EntryPosted,
		IsLocked: true,
	}
	suite.mockEntryRepo.On("CreateEntry", ctx, mock.MatchedBy(func(entry domain.JournalEntry) bool {
		return entry.Status == domain.EntryPosted &&
			entry.IsLocked &&
			entry.IdempotencyKey == expectedKey &&
			entry.PeriodID == suite.period.PeriodID &&
			entry.TotalDebit.Equal(decimal.NewFromInt(500))
	}), mock.AnythingOfType("[]domain.EntryLine"), "SF").Return(saved, nil).Once()
	suite.mockIdempotency.On("Finalize", ctx, "rec-1", mock.MatchedBy(func(result map[string]any) bool {
		return result["status"] == domain.IdempotencyCompleted && result["entry_id"] == saved.EntryID
	})).Return(nil).Once()

	entry, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.Require().NoError(err)
	suite.Equal(saved.EntryID, entry.EntryID)
	suite.Equal("SF-0001", entry.Number)
	suite.mockAuthority.AssertExpectations(suite.T())
	suite.mockIdempotency.AssertExpectations(suite.T())
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_AuthorityRunsFirst() {
	ctx := context.Background()
	violation := apperrors.NewAuthorityViolationError("not yours", nil)
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).
		Return(violation).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, suite.createRequest())

	suite.ErrorIs(err, apperrors.ErrAuthorityViolation)
	suite.mockIdempotency.AssertNotCalled(suite.T(), "CheckAndRecord",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_UnbalancedRejectedBeforeKeyHeld() {
	ctx := context.Background()
	req := suite.createRequest()
	req.Lines[1].Credit = decimal.NewFromInt(400)

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockIdempotency.AssertNotCalled(suite.T(), "CheckAndRecord",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_MalformedExplicitKeyRejected() {
	ctx := context.Background()
	req := suite.createRequest()
	req.IdempotencyKey = "JE:students:StudentFee:not-a-number:create"

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_DuplicateReturnsStoredEntry() {
	ctx := context.Background()
	req := suite.createRequest()
	storedEntry := &domain.JournalEntry{EntryID: "e-stored", Number: "SF-0001"}

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(true,
			&domain.IdempotencyRecord{RecordID: "rec-1", ResultData: map[string]any{"status": domain.IdempotencyCompleted, "entry_id": "e-stored"}},
			map[string]any{"status": domain.IdempotencyCompleted, "entry_id": "e-stored"},
			nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, "e-stored").Return(storedEntry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, "e-stored").Return([]domain.EntryLine{}, nil).Once()

	entry, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.Require().NoError(err)
	suite.Equal("e-stored", entry.EntryID)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_DuplicatePendingAwaitsHolder() {
	ctx := context.Background()
	req := suite.createRequest()
	expectedKey := "JE:students:StudentFee:42:create"

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, expectedKey, mock.Anything, suite.gov.User, 24).
		Return(true,
			&domain.IdempotencyRecord{RecordID: "rec-1", ResultData: map[string]any{"status": domain.IdempotencyPending}},
			map[string]any{"status": domain.IdempotencyPending},
			nil).Once()
	suite.mockIdempotency.On("AwaitResult", ctx, domain.OpJournalEntry, expectedKey).
		Return(map[string]any{"status": domain.IdempotencyCompleted, "entry_id": "e-await"}, nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, "e-await").Return(&domain.JournalEntry{EntryID: "e-await"}, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, "e-await").Return([]domain.EntryLine{}, nil).Once()

	entry, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.Require().NoError(err)
	suite.Equal("e-await", entry.EntryID)
	suite.mockIdempotency.AssertExpectations(suite.T())
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_FailureReleasesKey() {
	ctx := context.Background()
	req := suite.createRequest()

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-1"}, nil, nil).Once()
	suite.mockLinkage.On("CreateLinkage", ctx, mock.Anything).
		Return(apperrors.NewValidationError("source row does not exist", nil)).Once()
	suite.mockIdempotency.On("Release", ctx, "rec-1").Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockIdempotency.AssertExpectations(suite.T())
	suite.mockAudit.AssertCalled(suite.T(), "Record", mock.Anything, mock.MatchedBy(func(rec domain.AuditRecord) bool {
		return rec.Operation == domain.AuditOpCreateFailed
	}))
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_InactiveAccountRejected() {
	ctx := context.Background()
	req := suite.createRequest()
	accounts := suite.activeAccounts()
	accounts["4000"] = domain.Account{AccountCode: "4000", IsActive: false}

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-1"}, nil, nil).Once()
	suite.mockLinkage.On("CreateLinkage", ctx, mock.Anything).Return(nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, req.Date).Return(suite.period, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, []string{"1000", "4000"}).Return(accounts, nil).Once()
	suite.mockIdempotency.On("Release", ctx, "rec-1").Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_ClosedPeriodRejected() {
	ctx := context.Background()
	req := suite.createRequest()
	closed := *suite.period
	closed.Status = domain.PeriodClosed

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-1"}, nil, nil).Once()
	suite.mockLinkage.On("CreateLinkage", ctx, mock.Anything).Return(nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, req.Date).Return(&closed, nil).Once()
	suite.mockIdempotency.On("Release", ctx, "rec-1").Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountingGatewayTestSuite) TestCreateJournalEntry_StockMovementDateOutsidePeriod() {
	ctx := context.Background()
	movement := suite.period.StartDate.AddDate(0, 0, -10)
	req := dto.CreateEntryRequest{
		SourceModule: "inventory",
		SourceModel:  "StockMovement",
		SourceID:     "9",
		Date:         suite.entryDate,
		MovementDate: &movement,
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(50)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(50)},
		},
	}

	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StockMovement", "create", suite.gov.User).Return(nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntry, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-1"}, nil, nil).Once()
	suite.mockLinkage.On("CreateLinkage", ctx, mock.Anything).Return(nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, req.Date).Return(suite.period, nil).Once()
	suite.mockIdempotency.On("Release", ctx, "rec-1").Return(nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, suite.gov, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountingGatewayTestSuite) postedOriginal() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:      uuid.NewString(),
		Number:       "SF-0007",
		EntryType:    domain.EntryAutomatic,
		Status:       domain.EntryPosted,
		IsLocked:     true,
		SourceModule: "students",
		SourceModel:  "StudentFee",
		SourceID:     "42",
	}
}

func (suite *AccountingGatewayTestSuite) TestCreateReversalEntry_Success() {
	ctx := context.Background()
	original := suite.postedOriginal()
	originalLines := []domain.EntryLine{
		{AccountCode: "1000", Debit: decimal.NewFromInt(500)},
		{AccountCode: "4000", Credit: decimal.NewFromInt(500)},
	}
	expectedKey := "REV:students:StudentFee:42:" + original.EntryID

	suite.mockEntryRepo.On("FindEntryByID", ctx, original.EntryID).Return(original, nil).Once()
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "reverse", suite.gov.User).Return(nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, original.EntryID).Return(originalLines, nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntryReversal, expectedKey,
		map[string]any{"status": domain.IdempotencyPending}, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-r"}, nil, nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, mock.AnythingOfType("time.Time")).Return(suite.period, nil).Once()

	saved := &domain.JournalEntry{EntryID: uuid.NewString(), Number: "SF-0008", EntryType: domain.EntryReversal}
	suite.mockEntryRepo.On("CreateReversal", ctx, mock.MatchedBy(func(rev domain.JournalEntry) bool {
		return rev.EntryType == domain.EntryReversal &&
			rev.ReversedEntryID != nil && *rev.ReversedEntryID == original.EntryID &&
			rev.TotalDebit.Equal(decimal.NewFromInt(500))
	}), mock.AnythingOfType("[]domain.EntryLine"), "SF", original.EntryID).Return(saved, nil).Once()
	suite.mockIdempotency.On("Finalize", ctx, "rec-r", mock.Anything).Return(nil).Once()

	reversal, err := suite.service.CreateReversalEntry(ctx, suite.gov, original.EntryID, dto.CreateReversalRequest{Reason: "posted twice"})

	suite.Require().NoError(err)
	suite.Equal(saved.EntryID, reversal.EntryID)
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertCalled(suite.T(), "Record", mock.Anything, mock.MatchedBy(func(rec domain.AuditRecord) bool {
		return rec.Operation == domain.AuditOpReverse
	}))
}

func (suite *AccountingGatewayTestSuite) TestCreateReversalEntry_AlreadyReversed() {
	ctx := context.Background()
	original := suite.postedOriginal()
	reversalID := "rev-existing"
	original.ReversalEntryID = &reversalID

	suite.mockEntryRepo.On("FindEntryByID", ctx, original.EntryID).Return(original, nil).Once()
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "reverse", suite.gov.User).Return(nil).Once()

	_, err := suite.service.CreateReversalEntry(ctx, suite.gov, original.EntryID, dto.CreateReversalRequest{Reason: "again"})

	suite.ErrorIs(err, apperrors.ErrIdempotency)
}

func (suite *AccountingGatewayTestSuite) TestCreateReversalEntry_ReversalOfReversalRejected() {
	ctx := context.Background()
	original := suite.postedOriginal()
	original.EntryType = domain.EntryReversal

	suite.mockEntryRepo.On("FindEntryByID", ctx, original.EntryID).Return(original, nil).Once()
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "reverse", suite.gov.User).Return(nil).Once()

	_, err := suite.service.CreateReversalEntry(ctx, suite.gov, original.EntryID, dto.CreateReversalRequest{Reason: "no"})

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountingGatewayTestSuite) TestCreateReversalEntry_PartialAmount() {
	ctx := context.Background()
	original := suite.postedOriginal()
	originalLines := []domain.EntryLine{
		{AccountCode: "1000", Debit: decimal.NewFromInt(500)},
		{AccountCode: "4000", Credit: decimal.NewFromInt(500)},
	}
	partial := decimal.NewFromInt(200)

	suite.mockEntryRepo.On("FindEntryByID", ctx, original.EntryID).Return(original, nil).Once()
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "reverse", suite.gov.User).Return(nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, original.EntryID).Return(originalLines, nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntryReversal, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-r"}, nil, nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, mock.AnythingOfType("time.Time")).Return(suite.period, nil).Once()
	suite.mockEntryRepo.On("CreateReversal", ctx, mock.MatchedBy(func(rev domain.JournalEntry) bool {
		return rev.TotalDebit.Equal(partial) && rev.TotalCredit.Equal(partial)
	}), mock.AnythingOfType("[]domain.EntryLine"), "SF", original.EntryID).
		Return(&domain.JournalEntry{EntryID: "rev-1"}, nil).Once()
	suite.mockIdempotency.On("Finalize", ctx, "rec-r", mock.Anything).Return(nil).Once()

	_, err := suite.service.CreateReversalEntry(ctx, suite.gov, original.EntryID, dto.CreateReversalRequest{
		Reason:        "partial refund",
		PartialAmount: &partial,
	})

	suite.Require().NoError(err)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *AccountingGatewayTestSuite) TestCreateReversalEntry_ClosedPeriodNeedsException() {
	ctx := context.Background()
	original := suite.postedOriginal()
	originalLines := []domain.EntryLine{
		{AccountCode: "1000", Debit: decimal.NewFromInt(100)},
		{AccountCode: "4000", Credit: decimal.NewFromInt(100)},
	}
	closed := *suite.period
	closed.Status = domain.PeriodClosed

	suite.mockEntryRepo.On("FindEntryByID", ctx, original.EntryID).Return(original, nil).Once()
	suite.mockAuthority.On("ValidateAuthority", ctx, "StudentFinanceService", "StudentFee", "reverse", suite.gov.User).Return(nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, original.EntryID).Return(originalLines, nil).Once()
	suite.mockIdempotency.On("CheckAndRecord", ctx, domain.OpJournalEntryReversal, mock.Anything, mock.Anything, suite.gov.User, 24).
		Return(false, &domain.IdempotencyRecord{RecordID: "rec-r"}, nil, nil).Once()
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, mock.AnythingOfType("time.Time")).Return(&closed, nil).Once()
	suite.mockIdempotency.On("Release", ctx, "rec-r").Return(nil).Once()

	_, err := suite.service.CreateReversalEntry(ctx, suite.gov, original.EntryID, dto.CreateReversalRequest{Reason: "late fix"})

	suite.ErrorIs(err, apperrors.ErrGovernance)
}

func (suite *AccountingGatewayTestSuite) TestGetEntry_LoadsLines() {
	ctx := context.Background()
	entry := &domain.JournalEntry{EntryID: "e1"}
	lines := []domain.EntryLine{{LineID: "l1", EntryID: "e1"}}

	suite.mockEntryRepo.On("FindEntryByID", ctx, "e1").Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, "e1").Return(lines, nil).Once()

	got, err := suite.service.GetEntry(ctx, suite.gov, "e1")

	suite.Require().NoError(err)
	suite.Len(got.Lines, 1)
}

func TestAccountingGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(AccountingGatewayTestSuite))
}
