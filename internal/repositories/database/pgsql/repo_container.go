package pgsql

import (
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EntryRepo:       newPgxEntryRepository(dbPool),
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
		DelegationRepo:  newPgxDelegationRepository(dbPool),
		QuarantineRepo:  newPgxQuarantineRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		PeriodRepo:      newPgxPeriodRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		SourceRepo:      newPgxSourceRepository(dbPool),
	}
}
