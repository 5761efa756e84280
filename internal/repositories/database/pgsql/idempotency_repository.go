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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates a new repository for the dedup ledger.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepositoryFacade {
	return &PgxIdempotencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.IdempotencyRepositoryFacade = (*PgxIdempotencyRepository)(nil)

const idempotencyColumns = `record_id, operation_type, key, result_data, created_by, created_at, expires_at`

// AcquireOrGet creates the record for its (operation_type, key) under a row
// lock, or returns the live record that already holds the key. An expired
// record is deleted and replaced in the same transaction. Losing the insert
// race to a concurrent transaction surfaces as a concurrency error so the
// caller's retry loop can re-read.
func (r *PgxIdempotencyRepository) AcquireOrGet(ctx context.Context, rec domain.IdempotencyRecord) (*domain.IdempotencyRecord, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx)

	selectQuery := `
		SELECT ` + idempotencyColumns + `
		FROM idempotency_records
		WHERE operation_type = $1 AND key = $2
		FOR UPDATE;
	`
	var m models.IdempotencyRecord
	err = tx.QueryRow(ctx, selectQuery, rec.OperationType, rec.Key).Scan(
		&m.RecordID,
		&m.OperationType,
		&m.Key,
		&m.ResultData,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.ExpiresAt,
	)
	switch {
	case err == nil:
		existing := mapping.ToDomainIdempotencyRecord(m)
		if !existing.IsExpired(rec.CreatedAt) {
			if err := r.Commit(ctx, tx); err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		// Expired: the key is reusable, replace the record.
		if _, err := tx.Exec(ctx, `DELETE FROM idempotency_records WHERE record_id = $1;`, existing.RecordID); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to delete expired idempotency record "+existing.RecordID, err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// No holder, fall through to insert.
	default:
		return nil, false, apperrors.NewAppError(500, "failed to look up idempotency record", err)
	}

	insertQuery := `
		INSERT INTO idempotency_records (record_id, operation_type, key, result_data, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, insertQuery,
		rec.RecordID,
		rec.OperationType,
		rec.Key,
		rec.ResultData,
		rec.CreatedBy,
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, false, apperrors.NewConcurrencyError("idempotency key acquired by a concurrent caller", map[string]any{
				"operation_type": rec.OperationType,
				"key":            rec.Key,
			})
		}
		return nil, false, apperrors.NewAppError(500, "failed to insert idempotency record", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	acquired := rec
	return &acquired, true, nil
}

// FindRecord retrieves the record for an (operationType, key) pair.
func (r *PgxIdempotencyRepository) FindRecord(ctx context.Context, operationType, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT ` + idempotencyColumns + `
		FROM idempotency_records
		WHERE operation_type = $1 AND key = $2;
	`
	var m models.IdempotencyRecord
	err := r.Pool.QueryRow(ctx, query, operationType, key).Scan(
		&m.RecordID,
		&m.OperationType,
		&m.Key,
		&m.ResultData,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find idempotency record", err)
	}

	rec := mapping.ToDomainIdempotencyRecord(m)
	return &rec, nil
}

// FinalizeRecord replaces the placeholder result with the real one.
func (r *PgxIdempotencyRepository) FinalizeRecord(ctx context.Context, recordID string, resultData map[string]any) error {
	query := `UPDATE idempotency_records SET result_data = $2 WHERE record_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, recordID, resultData)
	if err != nil {
		return apperrors.NewAppError(500, "failed to finalize idempotency record "+recordID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("idempotency record " + recordID + " not found for finalize")
	}
	return nil
}

// DeleteRecord removes a record after a failed governed operation.
func (r *PgxIdempotencyRepository) DeleteRecord(ctx context.Context, recordID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM idempotency_records WHERE record_id = $1;`, recordID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete idempotency record "+recordID, err)
	}
	return nil
}

// DeleteExpiredBefore removes up to batchSize records whose expiry passed
// before cutoff.
func (r *PgxIdempotencyRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM idempotency_records
		WHERE record_id IN (
			SELECT record_id FROM idempotency_records
			WHERE expires_at < $1
			LIMIT $2
		);
	`
	cmdTag, err := r.Pool.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete expired idempotency records", err)
	}
	return cmdTag.RowsAffected(), nil
}

// DeleteCreatedBefore removes up to batchSize records created before cutoff
// regardless of expiry.
func (r *PgxIdempotencyRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM idempotency_records
		WHERE record_id IN (
			SELECT record_id FROM idempotency_records
			WHERE created_at < $1
			LIMIT $2
		);
	`
	cmdTag, err := r.Pool.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete aged idempotency records", err)
	}
	return cmdTag.RowsAffected(), nil
}
