package pgsql

import (
	"context"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSourceRepository resolves source-linkage references by probing the
// collaborator module's own table. Table names come exclusively from the
// source registry built at process start, never from request input.
type PgxSourceRepository struct {
	BaseRepository
}

func newPgxSourceRepository(pool *pgxpool.Pool) portsrepo.SourceRepositoryFacade {
	return &PgxSourceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SourceRepositoryFacade = (*PgxSourceRepository)(nil)

// SourceExists reports whether the business row backing a ledger entry still
// exists.
func (r *PgxSourceRepository) SourceExists(ctx context.Context, def domain.SourceDefinition, objectID string) (bool, error) {
	if def.Table == "" {
		return false, apperrors.NewValidationError("source definition for "+def.Module+"."+def.Model+" has no table", nil)
	}

	// The table name cannot be a bind parameter; Sanitize quotes it.
	query := `SELECT EXISTS (SELECT 1 FROM ` + pgx.Identifier{def.Table}.Sanitize() + ` WHERE id = $1);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, objectID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check existence of "+def.Module+"."+def.Model+" "+objectID, err)
	}
	return exists, nil
}
