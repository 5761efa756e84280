package pgsql

import (
	"context"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	"github.com/erpcore/ledger_governance/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditRepository only inserts and reads: the audit_trail table has no
// update or delete path in the application.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveRecord appends one audit event. An empty object id is stored as NULL.
func (r *PgxAuditRepository) SaveRecord(ctx context.Context, rec domain.AuditRecord) error {
	var objectID *string
	if rec.ObjectID != "" {
		objectID = &rec.ObjectID
	}

	query := `
		INSERT INTO audit_trail (
			audit_id, model_name, object_id, operation, user_id, source_service,
			before_data, after_data, context, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		rec.AuditID,
		rec.ModelName,
		objectID,
		rec.Operation,
		rec.User,
		rec.SourceService,
		rec.BeforeData,
		rec.AfterData,
		rec.Context,
		rec.Timestamp,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit record "+rec.AuditID, err)
	}
	return nil
}

// ListByObject returns the newest audit events for one object.
func (r *PgxAuditRepository) ListByObject(ctx context.Context, modelName, objectID string, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT audit_id, model_name, object_id, operation, user_id, source_service,
		       before_data, after_data, context, timestamp
		FROM audit_trail
		WHERE model_name = $1 AND object_id = $2
		ORDER BY timestamp DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, modelName, objectID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query audit trail for "+modelName+" "+objectID, err)
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		var m models.AuditRecord
		if err := rows.Scan(
			&m.AuditID,
			&m.ModelName,
			&m.ObjectID,
			&m.Operation,
			&m.UserID,
			&m.SourceService,
			&m.BeforeData,
			&m.AfterData,
			&m.Context,
			&m.Timestamp,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit record row", err)
		}

		rec := domain.AuditRecord{
			AuditID:       m.AuditID,
			ModelName:     m.ModelName,
			Operation:     m.Operation,
			User:          m.UserID,
			SourceService: m.SourceService,
			BeforeData:    m.BeforeData,
			AfterData:     m.AfterData,
			Context:       m.Context,
			Timestamp:     m.Timestamp,
		}
		if m.ObjectID != nil {
			rec.ObjectID = *m.ObjectID
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating audit record rows", err)
	}
	return records, nil
}
