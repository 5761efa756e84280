package services

import (
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, registry *domain.SourceRegistry, matrix *AuthorityMatrix) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: nearly everything else records through it.
	container.Audit = NewAuditTrailService(repos.AuditRepo)

	container.Authority = NewAuthorityService(matrix, repos.DelegationRepo, container.Audit, MaintenanceWindow{
		StartHour: cfg.MaintenanceWindowStartHour,
		EndHour:   cfg.MaintenanceWindowEndHour,
	})

	container.Idempotency = NewIdempotencyService(repos.IdempotencyRepo, cfg.IdempotencyLockTimeout, cfg.IdempotencyLockPoll)

	container.Linkage = NewLinkageService(registry, repos.EntryRepo, repos.SourceRepo, container.Authority, container.Audit, cfg.RepairWorkers)

	container.Quarantine = NewQuarantineService(repos.QuarantineRepo, container.Audit)

	container.Gateway = NewAccountingGatewayService(
		repos,
		registry,
		container.Authority,
		container.Idempotency,
		container.Linkage,
		container.Audit,
		cfg.IdempotencyExpiryHours,
		cfg.PeriodProximityWarnDays,
	)

	container.RepairExecution = NewRepairExecutionService(
		repos.EntryRepo,
		repos.QuarantineRepo,
		container.Authority,
		container.Linkage,
		container.Quarantine,
		container.Audit,
	)

	container.RepairValidation = NewRepairValidationService(container.Linkage, repos.QuarantineRepo, cfg.ScanBatchSize)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountingGatewaySvcFacade = (*accountingGatewayService)(nil)
	_ portssvc.AuthoritySvcFacade         = (*authorityService)(nil)
	_ portssvc.IdempotencySvcFacade       = (*idempotencyService)(nil)
	_ portssvc.LinkageSvcFacade           = (*linkageService)(nil)
	_ portssvc.QuarantineSvcFacade        = (*quarantineService)(nil)
	_ portssvc.AuditTrailSvcFacade        = (*auditTrailService)(nil)
)
