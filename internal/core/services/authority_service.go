package services

import (
	"context"
	"errors"
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

// AuthorityMatrix maps each governed model to the single service allowed to
// write it. The matrix is fixed at process start; runtime exceptions go
// through delegations, never through matrix edits.
type AuthorityMatrix struct {
	owners   map[string]string
	critical map[string]bool
}

// NewAuthorityMatrix builds a matrix from explicit owner assignments. Every
// entry must name an owning service and every critical model must be
// governed; a bad matrix fails process startup instead of silently denying
// or allowing at runtime.
func NewAuthorityMatrix(owners map[string]string, criticalModels []string) (*AuthorityMatrix, error) {
	if len(owners) == 0 {
		return nil, fmt.Errorf("authority matrix has no owner assignments")
	}
	for model, owner := range owners {
		if model == "" {
			return nil, fmt.Errorf("authority matrix contains an entry with an empty model name")
		}
		if owner == "" {
			return nil, fmt.Errorf("authority matrix entry %s has no owning service", model)
		}
	}
	critical := make(map[string]bool, len(criticalModels))
	for _, m := range criticalModels {
		if _, governed := owners[m]; !governed {
			return nil, fmt.Errorf("critical model %s has no owner in the authority matrix", m)
		}
		critical[m] = true
	}
	return &AuthorityMatrix{owners: owners, critical: critical}, nil
}

// DefaultAuthorityMatrix returns the registered single-writer assignments.
func DefaultAuthorityMatrix() (*AuthorityMatrix, error) {
	return NewAuthorityMatrix(map[string]string{
		"JournalEntry":     "AccountingGateway",
		"JournalEntryLine": "AccountingGateway",
		"StockMovement":    "InventoryService",
		"Payroll":          "PayrollService",
		"StudentFee":       "StudentFinanceService",
		"Payment":          "FinanceService",
		"Expense":          "FinanceService",
		"ManualJournal":    "FinanceService",
	}, []string{"JournalEntry", "JournalEntryLine", "StockMovement", "Payroll"})
}

// OwnerOf returns the owning service for a model, if the model is governed.
func (m *AuthorityMatrix) OwnerOf(modelName string) (string, bool) {
	owner, ok := m.owners[modelName]
	return owner, ok
}

// IsCritical reports whether the model's delegations are restricted to the
// maintenance window.
func (m *AuthorityMatrix) IsCritical(modelName string) bool {
	return m.critical[modelName]
}

// MaintenanceWindow bounds the UTC hours during which critical-model
// delegations may be granted. A zero window (Start == End) allows any time.
type MaintenanceWindow struct {
	StartHour int
	EndHour   int
}

// Contains reports whether t falls inside the window. Windows may wrap
// midnight (e.g. 22 to 4).
func (w MaintenanceWindow) Contains(t time.Time) bool {
	if w.StartHour == w.EndHour {
		return true
	}
	h := t.UTC().Hour()
	if w.StartHour < w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}
	return h >= w.StartHour || h < w.EndHour
}

// authorityService enforces the single-writer matrix and manages delegations.
type authorityService struct {
	matrix         *AuthorityMatrix
	delegationRepo portsrepo.DelegationRepositoryFacade
	auditSvc       portssvc.AuditTrailSvcFacade
	window         MaintenanceWindow
}

// NewAuthorityService creates a new AuthorityService.
func NewAuthorityService(matrix *AuthorityMatrix, delegationRepo portsrepo.DelegationRepositoryFacade, auditSvc portssvc.AuditTrailSvcFacade, window MaintenanceWindow) portssvc.AuthoritySvcFacade {
	return &authorityService{
		matrix:         matrix,
		delegationRepo: delegationRepo,
		auditSvc:       auditSvc,
		window:         window,
	}
}

var _ portssvc.AuthoritySvcFacade = (*authorityService)(nil)

// ValidateAuthority checks the matrix first and falls back to an active
// delegation. Models outside the matrix are ungoverned and always pass;
// violations on governed models are audited before the error returns.
func (s *authorityService) ValidateAuthority(ctx context.Context, serviceName, modelName, operation, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	owner, governed := s.matrix.OwnerOf(modelName)
	if !governed {
		return nil
	}
	if serviceName == owner {
		return nil
	}

	delegation, err := s.delegationRepo.FindActiveDelegation(ctx, owner, serviceName, modelName, time.Now().UTC())
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check delegations for %s on %s: %w", serviceName, modelName, err)
	}
	if delegation != nil && delegation.IsCurrent(time.Now().UTC()) {
		logger.Info("Authority granted via delegation",
			slog.String("service", serviceName),
			slog.String("model_name", modelName),
			slog.String("delegation_id", delegation.DelegationID),
		)
		return nil
	}

	violationCtx := map[string]any{
		"service":   serviceName,
		"model":     modelName,
		"operation": operation,
		"owner":     owner,
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     modelName,
		Operation:     domain.AuditOpAuthorityViolation,
		User:          userID,
		SourceService: serviceName,
		Context:       violationCtx,
	})
	logger.Warn("Authority violation",
		slog.String("service", serviceName),
		slog.String("model_name", modelName),
		slog.String("operation", operation),
	)

	return apperrors.NewAuthorityViolationError(
		fmt.Sprintf("service %s has no authority to %s %s", serviceName, operation, modelName),
		violationCtx,
	)
}

// DelegateAuthority grants time-boxed write authority on behalf of the owning
// service. Re-granting an identical live delegation returns the existing one.
func (s *authorityService) DelegateAuthority(ctx context.Context, gov domain.GovernanceContext, req dto.DelegateAuthorityRequest) (*domain.AuthorityDelegation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid delegation duration "+req.Duration, map[string]any{"duration": req.Duration})
	}
	if duration <= 0 {
		return nil, apperrors.NewValidationError("delegation duration must be positive", map[string]any{"duration": req.Duration})
	}
	if duration > domain.MaxDelegationDuration {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("delegation duration %s exceeds the %s maximum", duration, domain.MaxDelegationDuration),
			map[string]any{"duration": req.Duration},
		)
	}

	owner, governed := s.matrix.OwnerOf(req.ModelName)
	if !governed {
		return nil, apperrors.NewValidationError("model "+req.ModelName+" is not governed", map[string]any{"model": req.ModelName})
	}
	if gov.Service != owner {
		return nil, apperrors.NewAuthorityViolationError(
			fmt.Sprintf("only %s may delegate authority over %s", owner, req.ModelName),
			map[string]any{"service": gov.Service, "model": req.ModelName, "owner": owner},
		)
	}
	if req.ToService == owner {
		return nil, apperrors.NewValidationError("cannot delegate a model to its own owner", map[string]any{"model": req.ModelName})
	}

	if s.matrix.IsCritical(req.ModelName) && !s.window.Contains(now) {
		return nil, apperrors.NewGovernanceError(
			fmt.Sprintf("delegations for critical model %s are only allowed during the maintenance window", req.ModelName),
			map[string]any{"model": req.ModelName, "window_start_hour": s.window.StartHour, "window_end_hour": s.window.EndHour},
		)
	}

	// Idempotent re-grant: a live delegation for the same triple is returned
	// as-is instead of stacking a second grant.
	existing, err := s.delegationRepo.FindActiveDelegation(ctx, owner, req.ToService, req.ModelName, now)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing delegations: %w", err)
	}
	if existing != nil && existing.IsCurrent(now) {
		logger.Info("Delegation already active, returning existing grant",
			slog.String("delegation_id", existing.DelegationID),
			slog.String("to_service", req.ToService),
			slog.String("model_name", req.ModelName),
		)
		return existing, nil
	}

	delegation := domain.AuthorityDelegation{
		DelegationID: uuid.NewString(),
		FromService:  owner,
		ToService:    req.ToService,
		ModelName:    req.ModelName,
		GrantedBy:    gov.User,
		Reason:       req.Reason,
		GrantedAt:    now,
		ExpiresAt:    now.Add(duration),
		IsActive:     true,
	}
	if err := s.delegationRepo.SaveDelegation(ctx, delegation); err != nil {
		return nil, fmt.Errorf("failed to save delegation: %w", err)
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     req.ModelName,
		ObjectID:      delegation.DelegationID,
		Operation:     domain.AuditOpDelegate,
		User:          gov.User,
		SourceService: gov.Service,
		AfterData: map[string]any{
			"to_service": req.ToService,
			"expires_at": delegation.ExpiresAt,
			"reason":     req.Reason,
		},
	})
	logger.Info("Authority delegated",
		slog.String("delegation_id", delegation.DelegationID),
		slog.String("to_service", req.ToService),
		slog.String("model_name", req.ModelName),
		slog.Time("expires_at", delegation.ExpiresAt),
	)
	return &delegation, nil
}

// RevokeDelegation ends a delegation early. Revoking an already revoked
// delegation is a no-op.
func (s *authorityService) RevokeDelegation(ctx context.Context, gov domain.GovernanceContext, delegationID, reason string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	delegation, err := s.delegationRepo.FindDelegationByID(ctx, delegationID)
	if err != nil {
		return err
	}
	if gov.Service != delegation.FromService {
		return apperrors.NewAuthorityViolationError(
			fmt.Sprintf("only %s may revoke delegation %s", delegation.FromService, delegationID),
			map[string]any{"service": gov.Service, "delegation_id": delegationID},
		)
	}
	if !delegation.IsActive {
		logger.Info("Delegation already revoked", slog.String("delegation_id", delegationID))
		return nil
	}

	now := time.Now().UTC()
	if err := s.delegationRepo.RevokeDelegation(ctx, delegationID, now); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     delegation.ModelName,
		ObjectID:      delegationID,
		Operation:     domain.AuditOpRevokeDelegation,
		User:          gov.User,
		SourceService: gov.Service,
		Context:       map[string]any{"reason": reason, "to_service": delegation.ToService},
	})
	logger.Info("Delegation revoked",
		slog.String("delegation_id", delegationID),
		slog.String("model_name", delegation.ModelName),
	)
	return nil
}
