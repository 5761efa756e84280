package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	"github.com/erpcore/ledger_governance/internal/models"
	"github.com/erpcore/ledger_governance/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDelegationRepository struct {
	BaseRepository
}

func newPgxDelegationRepository(pool *pgxpool.Pool) portsrepo.DelegationRepositoryFacade {
	return &PgxDelegationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DelegationRepositoryFacade = (*PgxDelegationRepository)(nil)

const delegationColumns = `
	delegation_id, from_service, to_service, model_name, granted_by, reason,
	granted_at, expires_at, is_active, revoked_at`

// SaveDelegation inserts a new delegation row.
func (r *PgxDelegationRepository) SaveDelegation(ctx context.Context, d domain.AuthorityDelegation) error {
	m := mapping.ToModelDelegation(d)
	query := `
		INSERT INTO authority_delegations (
			delegation_id, from_service, to_service, model_name, granted_by, reason,
			granted_at, expires_at, is_active, revoked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.DelegationID,
		m.FromService,
		m.ToService,
		m.ModelName,
		m.GrantedBy,
		m.Reason,
		m.GrantedAt,
		m.ExpiresAt,
		m.IsActive,
		m.RevokedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert delegation "+m.DelegationID, err)
	}
	return nil
}

// FindDelegationByID retrieves a delegation by its ID.
func (r *PgxDelegationRepository) FindDelegationByID(ctx context.Context, delegationID string) (*domain.AuthorityDelegation, error) {
	query := `SELECT ` + delegationColumns + ` FROM authority_delegations WHERE delegation_id = $1;`

	m, err := scanDelegationRow(r.Pool.QueryRow(ctx, query, delegationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find delegation by ID "+delegationID, err)
	}

	d := mapping.ToDomainDelegation(*m)
	return &d, nil
}

// FindActiveDelegation returns the delegation currently in force for the
// triple, if any. With several overlapping grants the most recent wins.
func (r *PgxDelegationRepository) FindActiveDelegation(ctx context.Context, fromService, toService, modelName string, now time.Time) (*domain.AuthorityDelegation, error) {
	query := `
		SELECT ` + delegationColumns + `
		FROM authority_delegations
		WHERE from_service = $1 AND to_service = $2 AND model_name = $3
		  AND is_active = TRUE AND granted_at <= $4 AND expires_at > $4
		ORDER BY granted_at DESC
		LIMIT 1;
	`
	m, err := scanDelegationRow(r.Pool.QueryRow(ctx, query, fromService, toService, modelName, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find active delegation", err)
	}

	d := mapping.ToDomainDelegation(*m)
	return &d, nil
}

// RevokeDelegation deactivates a delegation. Revoking an already revoked
// delegation affects no rows and is not an error.
func (r *PgxDelegationRepository) RevokeDelegation(ctx context.Context, delegationID string, revokedAt time.Time) error {
	query := `
		UPDATE authority_delegations
		SET is_active = FALSE, revoked_at = $2
		WHERE delegation_id = $1 AND is_active = TRUE;
	`
	_, err := r.Pool.Exec(ctx, query, delegationID, revokedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to revoke delegation "+delegationID, err)
	}
	return nil
}

func scanDelegationRow(row pgx.Row) (*models.AuthorityDelegation, error) {
	var m models.AuthorityDelegation
	err := row.Scan(
		&m.DelegationID,
		&m.FromService,
		&m.ToService,
		&m.ModelName,
		&m.GrantedBy,
		&m.Reason,
		&m.GrantedAt,
		&m.ExpiresAt,
		&m.IsActive,
		&m.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
