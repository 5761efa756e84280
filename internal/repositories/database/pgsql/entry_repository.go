package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

const uniqueViolationCode = "23505"

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entries and lines.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

const entryColumns = `
	entry_id, number, entry_date, entry_type, status, description, reference,
	category, subcategory, source_module, source_model, source_id, period_id,
	idempotency_key, is_locked, created_by_service, posted_by,
	reversed_entry_id, reversal_entry_id, total_debit, total_credit,
	created_at, created_by, last_updated_at, last_updated_by`

// CreateEntry allocates the next number for the prefix and inserts the entry
// and all lines in a single transaction.
func (r *PgxEntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, prefix string) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	saved, err := r.insertEntryWithLines(ctx, tx, entry, lines, prefix)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return saved, nil
}

// CreateReversal inserts the reversal entry and, in the same transaction,
// locks the original row, re-verifies it is still reversible and links the
// two entries.
func (r *PgxEntryRepository) CreateReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.EntryLine, prefix string, originalEntryID string) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Lock the original so two concurrent reversals serialize here.
	var existingReversalID *string
	var entryType string
	lockQuery := `
		SELECT entry_type, reversal_entry_id
		FROM journal_entries
		WHERE entry_id = $1
		FOR UPDATE;
	`
	err = tx.QueryRow(ctx, lockQuery, originalEntryID).Scan(&entryType, &existingReversalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + originalEntryID + " not found for reversal")
		}
		return nil, apperrors.NewAppError(500, "failed to lock entry "+originalEntryID+" for reversal", err)
	}
	if existingReversalID != nil {
		return nil, apperrors.NewIdempotencyError("entry "+originalEntryID+" is already reversed", map[string]any{
			"entry_id":          originalEntryID,
			"reversal_entry_id": *existingReversalID,
		})
	}
	if entryType == string(domain.EntryReversal) {
		return nil, apperrors.NewValidationError("entry "+originalEntryID+" is itself a reversal", map[string]any{
			"entry_id": originalEntryID,
		})
	}

	saved, err := r.insertEntryWithLines(ctx, tx, reversal, lines, prefix)
	if err != nil {
		return nil, err
	}

	linkQuery := `
		UPDATE journal_entries
		SET reversal_entry_id = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, linkQuery, originalEntryID, saved.EntryID, saved.CreatedAt, saved.CreatedBy)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to link reversal to entry "+originalEntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, apperrors.NewNotFoundError("entry " + originalEntryID + " disappeared during reversal")
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return saved, nil
}

// insertEntryWithLines allocates the number and writes the entry plus lines
// using the given transaction. The unique index on number turns a lost
// allocation race into a concurrency error the caller can retry.
func (r *PgxEntryRepository) insertEntryWithLines(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.EntryLine, prefix string) (*domain.JournalEntry, error) {
	number, err := r.nextEntryNumber(ctx, tx, prefix)
	if err != nil {
		return nil, err
	}
	entry.Number = number

	modelEntry := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, number, entry_date, entry_type, status, description, reference,
			category, subcategory, source_module, source_model, source_id, period_id,
			idempotency_key, is_locked, created_by_service, posted_by,
			reversed_entry_id, reversal_entry_id, total_debit, total_credit,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
	`
	_, err = tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.Number,
		modelEntry.EntryDate,
		modelEntry.EntryType,
		modelEntry.Status,
		modelEntry.Description,
		modelEntry.Reference,
		modelEntry.Category,
		modelEntry.Subcategory,
		modelEntry.SourceModule,
		modelEntry.SourceModel,
		modelEntry.SourceID,
		modelEntry.PeriodID,
		modelEntry.IdempotencyKey,
		modelEntry.IsLocked,
		modelEntry.CreatedByService,
		modelEntry.PostedBy,
		modelEntry.ReversedEntryID,
		modelEntry.ReversalEntryID,
		modelEntry.TotalDebit,
		modelEntry.TotalCredit,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.NewConcurrencyError("entry number "+number+" was taken by a concurrent writer", map[string]any{
				"number": number,
				"prefix": prefix,
			})
		}
		return nil, apperrors.NewAppError(500, "failed to insert entry "+modelEntry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (
			line_id, entry_id, account_code, debit, credit, description,
			cost_center, project, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, line := range lines {
		line.EntryID = entry.EntryID
		modelLine := mapping.ToModelLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountCode,
			modelLine.Debit,
			modelLine.Credit,
			modelLine.Description,
			modelLine.CostCenter,
			modelLine.Project,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert lines for entry "+modelEntry.EntryID, err)
	}

	saved := mapping.ToDomainEntry(modelEntry)
	saved.Lines = make([]domain.EntryLine, len(lines))
	for i, line := range lines {
		line.EntryID = entry.EntryID
		saved.Lines[i] = line
	}
	return &saved, nil
}

// nextEntryNumber scans the highest number for the prefix and increments it.
// The zero-padded suffix keeps lexical and numeric order aligned up to 9999;
// beyond that the suffix grows a digit and ordering stays correct because the
// scan parses the numeric part.
func (r *PgxEntryRepository) nextEntryNumber(ctx context.Context, tx pgx.Tx, prefix string) (string, error) {
	query := `
		SELECT number
		FROM journal_entries
		WHERE number LIKE $1
		ORDER BY length(number) DESC, number DESC
		LIMIT 1
		FOR UPDATE;
	`
	var last string
	err := tx.QueryRow(ctx, query, prefix+"-%").Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Sprintf("%s-%04d", prefix, 1), nil
		}
		return "", apperrors.NewAppError(500, "failed to scan last entry number for prefix "+prefix, err)
	}

	suffix := strings.TrimPrefix(last, prefix+"-")
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil {
		return "", apperrors.NewAppError(500, "malformed entry number "+last, convErr)
	}
	return fmt.Sprintf("%s-%04d", prefix, n+1), nil
}

// FindEntryByID retrieves an entry by its ID, without lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	domainEntry := mapping.ToDomainEntry(*m)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of an entry.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	query := `
		SELECT line_id, entry_id, account_code, debit, credit, description,
		       cost_center, project, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.EntryLine{}
	for rows.Next() {
		var l models.EntryLine
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountCode,
			&l.Debit,
			&l.Credit,
			&l.Description,
			&l.CostCenter,
			&l.Project,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainLineSlice(lines), nil
}

// ListEntriesBatch pages through all entries in entry-id order.
func (r *PgxEntryRepository) ListEntriesBatch(ctx context.Context, afterEntryID string, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id > $1
		ORDER BY entry_id
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, afterEntryID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries batch", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row during batch scan", err)
		}
		entries = append(entries, mapping.ToDomainEntry(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows during batch scan", err)
	}
	return entries, nil
}

// UpdateSourceLinkage repoints the entry's source triple during backfill or
// relink repair.
func (r *PgxEntryRepository) UpdateSourceLinkage(ctx context.Context, entryID string, ref domain.SourceRef, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET source_module = $2,
		    source_model = $3,
		    source_id = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE entry_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, entryID, ref.Module, ref.Model, ref.ID, updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update source linkage for entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for linkage update")
	}
	return nil
}

// CountMissingLinkage counts entries whose source triple is incomplete.
func (r *PgxEntryRepository) CountMissingLinkage(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entries
		WHERE source_module = '' OR source_model = '' OR source_id = '';
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count entries with missing linkage", err)
	}
	return count, nil
}

// CountUnbalanced counts entries whose lines do not sum to equal debits and
// credits. The stored totals are not trusted here; lines are re-aggregated.
func (r *PgxEntryRepository) CountUnbalanced(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM (
			SELECT e.entry_id
			FROM journal_entries e
			JOIN journal_entry_lines l ON l.entry_id = e.entry_id
			GROUP BY e.entry_id
			HAVING SUM(l.debit) <> SUM(l.credit)
		) unbalanced;
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count unbalanced entries", err)
	}
	return count, nil
}

// scanEntryRow scans one journal_entries row in entryColumns order.
func scanEntryRow(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.Number,
		&m.EntryDate,
		&m.EntryType,
		&m.Status,
		&m.Description,
		&m.Reference,
		&m.Category,
		&m.Subcategory,
		&m.SourceModule,
		&m.SourceModel,
		&m.SourceID,
		&m.PeriodID,
		&m.IdempotencyKey,
		&m.IsLocked,
		&m.CreatedByService,
		&m.PostedBy,
		&m.ReversedEntryID,
		&m.ReversalEntryID,
		&m.TotalDebit,
		&m.TotalCredit,
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
