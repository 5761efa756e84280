package repositories

import (
	"context"
	"time"

	"github.com/erpcore/ledger_governance/internal/core/domain"
)

// EntryRepositoryFacade persists journal entries and their lines.
//
// CreateEntry and CreateReversal are atomic: number allocation, the entry
// insert and all line inserts happen inside one database transaction, so a
// failure persists nothing and an allocated number is never reused by a
// concurrent writer within that transaction scope.
type EntryRepositoryFacade interface {
	// CreateEntry allocates the next entry number for the prefix and inserts
	// the entry plus all lines. Returns the saved entry with Number set.
	CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.EntryLine, prefix string) (*domain.JournalEntry, error)

	// CreateReversal does what CreateEntry does and, in the same transaction,
	// locks the original entry row, re-verifies it has not been reversed
	// meanwhile, and links it to the new reversal.
	CreateReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.EntryLine, prefix string, originalEntryID string) (*domain.JournalEntry, error)

	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error)

	// ListEntriesBatch pages through all entries in entry-id order. Pass the
	// last seen id (empty for the first page) to get the next batch.
	ListEntriesBatch(ctx context.Context, afterEntryID string, limit int) ([]domain.JournalEntry, error)

	// UpdateSourceLinkage repoints the entry's source triple (backfill/relink).
	UpdateSourceLinkage(ctx context.Context, entryID string, ref domain.SourceRef, updatedByUserID string, updatedAt time.Time) error

	// CountMissingLinkage counts entries with any null/empty source field.
	CountMissingLinkage(ctx context.Context) (int, error)

	// CountUnbalanced counts entries whose line debits and credits disagree.
	CountUnbalanced(ctx context.Context) (int, error)
}
