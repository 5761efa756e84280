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

type PgxQuarantineRepository struct {
	BaseRepository
}

func newPgxQuarantineRepository(pool *pgxpool.Pool) portsrepo.QuarantineRepositoryFacade {
	return &PgxQuarantineRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.QuarantineRepositoryFacade = (*PgxQuarantineRepository)(nil)

const quarantineColumns = `
	quarantine_id, model_name, object_id, corruption_type, original_data, reason,
	quarantined_by, status, resolution_notes, resolved_at,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveRecord inserts a new quarantine record.
func (r *PgxQuarantineRepository) SaveRecord(ctx context.Context, rec domain.QuarantineRecord) error {
	m := mapping.ToModelQuarantineRecord(rec)
	query := `
		INSERT INTO quarantine_records (
			quarantine_id, model_name, object_id, corruption_type, original_data, reason,
			quarantined_by, status, resolution_notes, resolved_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.QuarantineID,
		m.ModelName,
		m.ObjectID,
		m.CorruptionType,
		m.OriginalData,
		m.Reason,
		m.QuarantinedBy,
		m.Status,
		m.ResolutionNotes,
		m.ResolvedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert quarantine record "+m.QuarantineID, err)
	}
	return nil
}

// FindRecordByID retrieves a quarantine record by its ID.
func (r *PgxQuarantineRepository) FindRecordByID(ctx context.Context, quarantineID string) (*domain.QuarantineRecord, error) {
	query := `SELECT ` + quarantineColumns + ` FROM quarantine_records WHERE quarantine_id = $1;`

	m, err := scanQuarantineRow(r.Pool.QueryRow(ctx, query, quarantineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find quarantine record by ID "+quarantineID, err)
	}

	rec := mapping.ToDomainQuarantineRecord(*m)
	return &rec, nil
}

// FindOpenRecord returns the unresolved record for an (model, object, type)
// triple, if one exists. At most one such record is open at a time.
func (r *PgxQuarantineRepository) FindOpenRecord(ctx context.Context, modelName, objectID string, corruptionType domain.CorruptionType) (*domain.QuarantineRecord, error) {
	query := `
		SELECT ` + quarantineColumns + `
		FROM quarantine_records
		WHERE model_name = $1 AND object_id = $2 AND corruption_type = $3
		  AND status <> $4
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanQuarantineRow(r.Pool.QueryRow(ctx, query, modelName, objectID, string(corruptionType), string(domain.Resolved)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find open quarantine record", err)
	}

	rec := mapping.ToDomainQuarantineRecord(*m)
	return &rec, nil
}

// UpdateStatus advances the record through its resolution workflow.
func (r *PgxQuarantineRepository) UpdateStatus(ctx context.Context, quarantineID string, status domain.QuarantineStatus, resolutionNotes string, resolvedAt *time.Time, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE quarantine_records
		SET status = $2,
		    resolution_notes = $3,
		    resolved_at = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE quarantine_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, quarantineID, string(status), resolutionNotes, resolvedAt, updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update quarantine record "+quarantineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("quarantine record " + quarantineID + " not found for update")
	}
	return nil
}

// Summary aggregates quarantine records by model, corruption type and status.
func (r *PgxQuarantineRepository) Summary(ctx context.Context) ([]domain.CorruptionSummaryRow, error) {
	query := `
		SELECT model_name, corruption_type, status, COUNT(*)
		FROM quarantine_records
		GROUP BY model_name, corruption_type, status
		ORDER BY model_name, corruption_type, status;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query corruption summary", err)
	}
	defer rows.Close()

	summary := []domain.CorruptionSummaryRow{}
	for rows.Next() {
		var row domain.CorruptionSummaryRow
		var corruptionType, status string
		if err := rows.Scan(&row.ModelName, &corruptionType, &status, &row.Count); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan corruption summary row", err)
		}
		row.CorruptionType = domain.CorruptionType(corruptionType)
		row.Status = domain.QuarantineStatus(status)
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating corruption summary rows", err)
	}
	return summary, nil
}

// ListOpenObjectIDs returns the object ids of all unresolved records for a
// model, for cheap membership checks during scans.
func (r *PgxQuarantineRepository) ListOpenObjectIDs(ctx context.Context, modelName string) (map[string]bool, error) {
	query := `
		SELECT DISTINCT object_id
		FROM quarantine_records
		WHERE model_name = $1 AND status <> $2;
	`
	rows, err := r.Pool.Query(ctx, query, modelName, string(domain.Resolved))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open quarantine object ids for "+modelName, err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan quarantine object id", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating quarantine object ids", err)
	}
	return ids, nil
}

func scanQuarantineRow(row pgx.Row) (*models.QuarantineRecord, error) {
	var m models.QuarantineRecord
	err := row.Scan(
		&m.QuarantineID,
		&m.ModelName,
		&m.ObjectID,
		&m.CorruptionType,
		&m.OriginalData,
		&m.Reason,
		&m.QuarantinedBy,
		&m.Status,
		&m.ResolutionNotes,
		&m.ResolvedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
