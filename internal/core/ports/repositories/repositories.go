package repositories

// RepositoryProvider bundles every repository the service container needs.
type RepositoryProvider struct {
	EntryRepo       EntryRepositoryFacade
	IdempotencyRepo IdempotencyRepositoryFacade
	DelegationRepo  DelegationRepositoryFacade
	QuarantineRepo  QuarantineRepositoryFacade
	AuditRepo       AuditRepositoryFacade
	PeriodRepo      PeriodRepositoryFacade
	AccountRepo     AccountRepositoryFacade
	SourceRepo      SourceRepositoryFacade
}
