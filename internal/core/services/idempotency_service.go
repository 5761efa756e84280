package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/ledger_governance/internal/apperrors"
	"github.com/erpcore/ledger_governance/internal/core/domain"
	portsrepo "github.com/erpcore/ledger_governance/internal/core/ports/repositories"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
	"github.com/erpcore/ledger_governance/internal/utils/concurrency"
)

const (
	defaultExpiryHours      = 24
	defaultCleanupBatchSize = 500
)

// idempotencyService provides exactly-once bookkeeping for governed
// operations on top of the durable dedup ledger.
type idempotencyService struct {
	repo        portsrepo.IdempotencyRepositoryFacade
	counters    *concurrency.OperationCounters
	lockTimeout time.Duration
	lockPoll    time.Duration
}

// NewIdempotencyService creates a new IdempotencyService. lockTimeout bounds
// how long AwaitResult waits for a concurrent holder; lockPoll is the
// re-check interval.
func NewIdempotencyService(repo portsrepo.IdempotencyRepositoryFacade, lockTimeout, lockPoll time.Duration) portssvc.IdempotencySvcFacade {
	if lockTimeout <= 0 {
		lockTimeout = 30 * time.Second
	}
	if lockPoll <= 0 {
		lockPoll = 100 * time.Millisecond
	}
	return &idempotencyService{
		repo:        repo,
		counters:    &concurrency.OperationCounters{},
		lockTimeout: lockTimeout,
		lockPoll:    lockPoll,
	}
}

var _ portssvc.IdempotencySvcFacade = (*idempotencyService)(nil)

// CheckAndRecord acquires the (operationType, key) record or returns the one
// already holding it. Exactly one of N concurrent callers acquires; the rest
// see isDuplicate=true.
func (s *idempotencyService) CheckAndRecord(ctx context.Context, operationType, key string, resultData map[string]any, userID string, expiresInHours int) (bool, *domain.IdempotencyRecord, map[string]any, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if key == "" {
		return false, nil, nil, apperrors.NewValidationError("idempotency key is required", nil)
	}
	if expiresInHours <= 0 {
		expiresInHours = defaultExpiryHours
	}

	now := time.Now().UTC()
	candidate := domain.IdempotencyRecord{
		RecordID:      uuid.NewString(),
		OperationType: operationType,
		Key:           key,
		ResultData:    resultData,
		CreatedBy:     userID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(expiresInHours) * time.Hour),
	}

	var record *domain.IdempotencyRecord
	var acquired bool
	err := concurrency.RetryOnConcurrencyError(ctx, concurrency.DefaultRetryConfig(), func() error {
		var acquireErr error
		record, acquired, acquireErr = s.repo.AcquireOrGet(ctx, candidate)
		if acquireErr != nil && errors.Is(acquireErr, apperrors.ErrConcurrency) {
			s.counters.Contended.Add(1)
		}
		return acquireErr
	})
	if err != nil {
		return false, nil, nil, err
	}

	if acquired {
		s.counters.Executed.Add(1)
		return false, record, nil, nil
	}

	s.counters.Duplicates.Add(1)
	logger.Info("Duplicate operation detected",
		slog.String("operation_type", operationType),
		slog.String("key", key),
		slog.Bool("pending", record.IsPending()),
	)
	return true, record, record.ResultData, nil
}

// AwaitResult busy-waits (bounded) for the concurrent holder of a key to
// finalize its record, then returns the stored result.
func (s *idempotencyService) AwaitResult(ctx context.Context, operationType, key string) (map[string]any, error) {
	deadline := time.Now().Add(s.lockTimeout)

	for {
		record, err := s.repo.FindRecord(ctx, operationType, key)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// The holder failed and released the key: the caller may retry
				// the whole operation cleanly.
				return nil, apperrors.NewIdempotencyError(
					"concurrent operation failed before producing a result",
					map[string]any{"operation_type": operationType, "key": key},
				)
			}
			return nil, err
		}
		if !record.IsPending() {
			return record.ResultData, nil
		}

		if time.Now().After(deadline) {
			return nil, apperrors.NewConcurrencyError(
				fmt.Sprintf("timed out after %s waiting for concurrent operation", s.lockTimeout),
				map[string]any{"operation_type": operationType, "key": key},
			)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.lockPoll):
		}
	}
}

// Finalize replaces the placeholder result with the real one.
func (s *idempotencyService) Finalize(ctx context.Context, recordID string, resultData map[string]any) error {
	return s.repo.FinalizeRecord(ctx, recordID, resultData)
}

// Release deletes the record after a failed operation so a retry with the
// same key is not blocked.
func (s *idempotencyService) Release(ctx context.Context, recordID string) error {
	s.counters.Failed.Add(1)
	return s.repo.DeleteRecord(ctx, recordID)
}

// CleanupExpiredRecords removes expired records in bounded batches, then
// records older than MaxAgeDays when set. Batches run sequentially so the
// delete load on the table stays flat.
func (s *idempotencyService) CleanupExpiredRecords(ctx context.Context, req dto.CleanupRequest) (*dto.CleanupReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	start := time.Now()
	now := start.UTC()

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = defaultCleanupBatchSize
	}

	report := &dto.CleanupReport{}
	for {
		deleted, err := s.repo.DeleteExpiredBefore(ctx, now, batchSize)
		if err != nil {
			return nil, err
		}
		report.ExpiredDeleted += deleted
		report.Batches++
		if deleted < int64(batchSize) {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if req.MaxAgeDays > 0 {
		cutoff := now.AddDate(0, 0, -req.MaxAgeDays)
		for {
			deleted, err := s.repo.DeleteCreatedBefore(ctx, cutoff, batchSize)
			if err != nil {
				return nil, err
			}
			report.AgedDeleted += deleted
			report.Batches++
			if deleted < int64(batchSize) {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}

	report.DurationMillis = time.Since(start).Milliseconds()
	report.Counters = s.counters.Snapshot()

	logger.Info("Idempotency cleanup finished",
		slog.Int64("expired_deleted", report.ExpiredDeleted),
		slog.Int64("aged_deleted", report.AgedDeleted),
		slog.Int("batches", report.Batches),
		slog.Int64("duration_ms", report.DurationMillis),
	)
	return report, nil
}
