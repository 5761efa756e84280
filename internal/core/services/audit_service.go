package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/middleware"
	"github.com/erpcore/ledger_governance/internal/utils/redact"
)

// auditTrailService writes append-only audit events. A failed audit write
// never fails the business transaction that triggered it: the event is logged
// and the transaction proceeds.
type auditTrailService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditTrailService creates a new AuditTrailService.
func NewAuditTrailService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditTrailSvcFacade {
	return &auditTrailService{auditRepo: auditRepo}
}

var _ portssvc.AuditTrailSvcFacade = (*auditTrailService)(nil)

// Record appends one audit event, redacting sensitive payload keys first.
func (s *auditTrailService) Record(ctx context.Context, rec domain.AuditRecord) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if rec.AuditID == "" {
		rec.AuditID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	rec.BeforeData = redact.Map(rec.BeforeData)
	rec.AfterData = redact.Map(rec.AfterData)
	rec.Context = redact.Map(rec.Context)

	if err := s.auditRepo.SaveRecord(ctx, rec); err != nil {
		// Best-effort: the governed operation already happened (or already
		// failed); losing the audit row is logged, not propagated.
		logger.Error("Failed to write audit record",
			slog.String("operation", rec.Operation),
			slog.String("model_name", rec.ModelName),
			slog.String("object_id", rec.ObjectID),
			slog.String("error", err.Error()),
		)
	}
}

// ListForObject returns the newest audit events for one object.
func (s *auditTrailService) ListForObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error) {
	return s.auditRepo.ListByObject(ctx, modelName, objectID, limit)
}
