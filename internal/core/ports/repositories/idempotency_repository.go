package repositories

import (
	"context"
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
)

// IdempotencyRepositoryFacade is the durable dedup ledger.
type IdempotencyRepositoryFacade interface {
	// AcquireOrGet attempts to create the record for its (operationType, key)
	// under a row lock. If a live record already exists it is returned with
	// acquired=false. An expired record is deleted and replaced. A race lost
	// to a concurrent inserter surfaces as apperrors.ErrConcurrency so the
	// caller's bounded retry loop can try again.
	AcquireOrGet(ctx context.Context, rec domain.IdempotencyRecord) (record *domain.IdempotencyRecord, acquired bool, err error)

	FindRecord(ctx context.Context, operationType, key string) (*domain.IdempotencyRecord, error)

	// FinalizeRecord replaces the placeholder result with the real one.
	FinalizeRecord(ctx context.Context, recordID string, resultData map[string]any) error

	// DeleteRecord removes a record so a clean retry is possible after the
	// governed operation failed.
	DeleteRecord(ctx context.Context, recordID string) error

	// DeleteExpiredBefore removes up to batchSize records whose expiry passed
	// before cutoff. Returns the number deleted.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)

	// DeleteCreatedBefore removes up to batchSize records created before
	// cutoff regardless of expiry. Returns the number deleted.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}
