package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
	"github.com/erpcore/ledger_governance/internal/utils/redact"
)

// quarantineService isolates and resolves corrupted objects. Quarantine never
// deletes anything: the original data snapshot rides along in the record.
type quarantineService struct {
	quarantineRepo portsrepo.QuarantineRepositoryFacade
	auditSvc       portssvc.AuditTrailSvcFacade
}

// NewQuarantineService creates a new QuarantineService.
func NewQuarantineService(quarantineRepo portsrepo.QuarantineRepositoryFacade, auditSvc portssvc.AuditTrailSvcFacade) portssvc.QuarantineSvcFacade {
	return &quarantineService{
		quarantineRepo: quarantineRepo,
		auditSvc:       auditSvc,
	}
}

var _ portssvc.QuarantineSvcFacade = (*quarantineService)(nil)

// QuarantineData isolates an object. A second quarantine for the same
// (model, object, corruption type) while one is still open returns the open
// record instead of stacking another.
func (s *quarantineService) QuarantineData(ctx context.Context, gov domain.GovernanceContext, req dto.QuarantineRequest) (*domain.QuarantineRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	corruptionType := domain.CorruptionType(req.CorruptionType)
	switch corruptionType {
	case domain.CorruptionMissingLinkage, domain.CorruptionInvalidLinkage, domain.CorruptionUnbalanced:
	default:
		return nil, apperrors.NewValidationError("unknown corruption type "+req.CorruptionType, map[string]any{
			"corruption_type": req.CorruptionType,
		})
	}

	existing, err := s.quarantineRepo.FindOpenRecord(ctx, req.ModelName, req.ObjectID, corruptionType)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Info("Object already quarantined",
			slog.String("quarantine_id", existing.QuarantineID),
			slog.String("model_name", req.ModelName),
			slog.String("object_id", req.ObjectID),
		)
		return existing, nil
	}

	now := time.Now().UTC()
	record := domain.QuarantineRecord{
		QuarantineID:   uuid.NewString(),
		ModelName:      req.ModelName,
		ObjectID:       req.ObjectID,
		CorruptionType: corruptionType,
		OriginalData:   redact.Map(req.OriginalData),
		Reason:         req.Reason,
		QuarantinedBy:  gov.User,
		Status:         domain.Quarantined,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     gov.User,
			LastUpdatedAt: now,
			LastUpdatedBy: gov.User,
		},
	}
	if err := s.quarantineRepo.SaveRecord(ctx, record); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     req.ModelName,
		ObjectID:      req.ObjectID,
		Operation:     domain.AuditOpQuarantine,
		User:          gov.User,
		SourceService: gov.Service,
		Context: map[string]any{
			"quarantine_id":   record.QuarantineID,
			"corruption_type": req.CorruptionType,
			"reason":          req.Reason,
		},
	})
	logger.Warn("Object quarantined",
		slog.String("quarantine_id", record.QuarantineID),
		slog.String("model_name", req.ModelName),
		slog.String("object_id", req.ObjectID),
		slog.String("corruption_type", req.CorruptionType),
	)
	return &record, nil
}

// MarkUnderReview moves a quarantined record under operator review. Marking
// a record that is already under review is a no-op; a resolved record stays
// resolved.
func (s *quarantineService) MarkUnderReview(ctx context.Context, gov domain.GovernanceContext, quarantineID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.quarantineRepo.FindRecordByID(ctx, quarantineID)
	if err != nil {
		return err
	}
	if record.Status == domain.UnderReview {
		logger.Info("Quarantine record already under review", slog.String("quarantine_id", quarantineID))
		return nil
	}
	if record.Status == domain.Resolved {
		return apperrors.NewValidationError("resolved quarantine records cannot be reopened for review", map[string]any{
			"quarantine_id": quarantineID,
		})
	}

	now := time.Now().UTC()
	if err := s.quarantineRepo.UpdateStatus(ctx, quarantineID, domain.UnderReview, "", nil, gov.User, now); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     record.ModelName,
		ObjectID:      record.ObjectID,
		Operation:     domain.AuditOpQuarantineReview,
		User:          gov.User,
		SourceService: gov.Service,
		Context:       map[string]any{"quarantine_id": quarantineID},
	})
	logger.Info("Quarantine record under review",
		slog.String("quarantine_id", quarantineID),
		slog.String("model_name", record.ModelName),
		slog.String("object_id", record.ObjectID),
	)
	return nil
}

// ResolveQuarantine closes a quarantine record. Resolving an already resolved
// record is a no-op.
func (s *quarantineService) ResolveQuarantine(ctx context.Context, gov domain.GovernanceContext, quarantineID, resolutionNotes string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.quarantineRepo.FindRecordByID(ctx, quarantineID)
	if err != nil {
		return err
	}
	if record.Status == domain.Resolved {
		logger.Info("Quarantine record already resolved", slog.String("quarantine_id", quarantineID))
		return nil
	}
	if resolutionNotes == "" {
		return apperrors.NewValidationError("resolution notes are required", map[string]any{
			"quarantine_id": quarantineID,
		})
	}

	now := time.Now().UTC()
	if err := s.quarantineRepo.UpdateStatus(ctx, quarantineID, domain.Resolved, resolutionNotes, &now, gov.User, now); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditRecord{
		ModelName:     record.ModelName,
		ObjectID:      record.ObjectID,
		Operation:     domain.AuditOpResolveQuarantine,
		User:          gov.User,
		SourceService: gov.Service,
		Context: map[string]any{
			"quarantine_id":    quarantineID,
			"resolution_notes": resolutionNotes,
		},
	})
	logger.Info("Quarantine resolved",
		slog.String("quarantine_id", quarantineID),
		slog.String("model_name", record.ModelName),
		slog.String("object_id", record.ObjectID),
	)
	return nil
}

// GetCorruptionSummary aggregates quarantine records by model, type and
// status.
func (s *quarantineService) GetCorruptionSummary(ctx context.Context) ([]domain.CorruptionSummaryRow, error) {
	return s.quarantineRepo.Summary(ctx)
}
