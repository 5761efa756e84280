package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/handlers"
	"github.com/erpcore/ledger_governance/pkg/config"
)

// --- Mock AccountingGatewayService ---
type MockGatewayService struct {
	mock.Mock
}

func (m *MockGatewayService) CreateJournalEntry(ctx context.Context, gov domain.GovernanceContext, req dto.CreateEntryRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, gov, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockGatewayService) CreateReversalEntry(ctx context.Context, gov domain.GovernanceContext, originalEntryID string, req dto.CreateReversalRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, gov, originalEntryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockGatewayService) GetEntry(ctx context.Context, gov domain.GovernanceContext, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, gov, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.AccountingGatewaySvcFacade = (*MockGatewayService)(nil)

// --- Mock LinkageService ---
type MockLinkageService struct {
	mock.Mock
}

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

var _ portssvc.LinkageSvcFacade = (*MockLinkageService)(nil)

// --- Mock AuditTrailService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, rec domain.AuditRecord) {
	m.Called(ctx, rec)
}
func (m *MockAuditService) ListForObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, modelName, objectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

var _ portssvc.AuditTrailSvcFacade = (*MockAuditService)(nil)

type EntryHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockGateway *MockGatewayService
	mockLinkage *MockLinkageService
	mockAudit   *MockAuditService
	jwtSecret   string
}

// generateServiceToken mints a JWT like a collaborator service would carry.
func (suite *EntryHandlerTestSuite) generateServiceToken(serviceName, userID string) string {
	claims := jwt.MapClaims{
		"svc": serviceName,
		"sub": userID,
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockGateway = new(MockGatewayService)
	suite.mockLinkage = new(MockLinkageService)
	suite.mockAudit = new(MockAuditService)

	rate := limiter.Rate{Period: time.Minute, Limit: 1000}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{JWTSecret: suite.jwtSecret},
		&portssvc.ServiceContainer{
			Gateway: suite.mockGateway,
			Linkage: suite.mockLinkage,
			Audit:   suite.mockAudit,
		}, limiterInstance)
}

func (suite *EntryHandlerTestSuite) doJSON(method, url, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func validCreatePayload() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		SourceModule: "students",
		SourceModel:  "StudentFee",
		SourceID:     "42",
		Date:         time.Now().UTC(),
		Description:  "Term fee",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(500)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(500)},
		},
	}
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_Success() {
	userID := uuid.NewString()
	saved := &domain.JournalEntry{EntryID: uuid.NewString(), Number: "SF-0001", Status: domain.EntryPosted}

	suite.mockGateway.On("CreateJournalEntry",
		mock.Anything,
		domain.GovernanceContext{Service: "StudentFinanceService", User: userID},
		mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
			return req.SourceID == "42" && len(req.Lines) == 2
		}),
	).Return(saved, nil).Once()

	token := suite.generateServiceToken("StudentFinanceService", userID)
	w := suite.doJSON(http.MethodPost, "/api/v1/entries", token, validCreatePayload())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(saved.EntryID, resp.EntryID)
	suite.Equal("SF-0001", resp.Number)
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_RequiresToken() {
	w := suite.doJSON(http.MethodPost, "/api/v1/entries", "", validCreatePayload())

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockGateway.AssertNotCalled(suite.T(), "CreateJournalEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_MalformedKeyRejectedByBinding() {
	payload := validCreatePayload()
	payload.IdempotencyKey = "not-a-structured-key"

	token := suite.generateServiceToken("StudentFinanceService", uuid.NewString())
	w := suite.doJSON(http.MethodPost, "/api/v1/entries", token, payload)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockGateway.AssertNotCalled(suite.T(), "CreateJournalEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_AuthorityViolationMapsTo403() {
	suite.mockGateway.On("CreateJournalEntry", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewAuthorityViolationError("InventoryService does not own StudentFee", nil)).Once()

	token := suite.generateServiceToken("InventoryService", uuid.NewString())
	w := suite.doJSON(http.MethodPost, "/api/v1/entries", token, validCreatePayload())

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *EntryHandlerTestSuite) TestReverseEntry_Success() {
	entryID := uuid.NewString()
	userID := uuid.NewString()
	reversal := &domain.JournalEntry{EntryID: uuid.NewString(), Number: "SF-0002", EntryType: domain.EntryReversal}

	suite.mockGateway.On("CreateReversalEntry",
		mock.Anything,
		domain.GovernanceContext{Service: "StudentFinanceService", User: userID},
		entryID,
		mock.MatchedBy(func(req dto.CreateReversalRequest) bool { return req.Reason == "posted twice" }),
	).Return(reversal, nil).Once()

	token := suite.generateServiceToken("StudentFinanceService", userID)
	w := suite.doJSON(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", token,
		dto.CreateReversalRequest{Reason: "posted twice"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(reversal.EntryID, resp.EntryID)
}

func (suite *EntryHandlerTestSuite) TestReverseEntry_AlreadyReversedMapsTo409() {
	entryID := uuid.NewString()
	suite.mockGateway.On("CreateReversalEntry", mock.Anything, mock.Anything, entryID, mock.Anything).
		Return(nil, apperrors.NewIdempotencyError("entry already reversed", nil)).Once()

	token := suite.generateServiceToken("StudentFinanceService", uuid.NewString())
	w := suite.doJSON(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", token,
		dto.CreateReversalRequest{Reason: "again"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFoundMapsTo404() {
	entryID := uuid.NewString()
	suite.mockGateway.On("GetEntry", mock.Anything, mock.Anything, entryID).
		Return(nil, apperrors.NewNotFoundError("entry not found")).Once()

	token := suite.generateServiceToken("StudentFinanceService", uuid.NewString())
	w := suite.doJSON(http.MethodGet, "/api/v1/entries/"+entryID, token, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *EntryHandlerTestSuite) TestBackfillLinkage_DryRun() {
	entryID := uuid.NewString()
	userID := uuid.NewString()
	ref := domain.SourceRef{Module: "students", Model: "StudentFee", ID: "42"}

	suite.mockLinkage.On("BackfillSourceLinkage",
		mock.Anything,
		domain.GovernanceContext{Service: "AccountingGateway", User: userID},
		entryID, ref, true,
	).Return(nil).Once()

	token := suite.generateServiceToken("AccountingGateway", userID)
	w := suite.doJSON(http.MethodPost, "/api/v1/entries/"+entryID+"/backfill-linkage", token,
		dto.BackfillLinkageRequest{SourceModule: "students", SourceModel: "StudentFee", SourceID: "42", DryRun: true})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockLinkage.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetEntryAudit_ReturnsRecords() {
	entryID := uuid.NewString()
	records := []domain.AuditRecord{
		{ModelName: "JournalEntry", ObjectID: entryID, Operation: domain.AuditOpCreate},
	}
	suite.mockAudit.On("ListForObject", mock.Anything, "JournalEntry", entryID, 0).Return(records, nil).Once()

	token := suite.generateServiceToken("StudentFinanceService", uuid.NewString())
	w := suite.doJSON(http.MethodGet, "/api/v1/entries/"+entryID+"/audit", token, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAudit.AssertExpectations(suite.T())
}

func TestEntryHandler(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
