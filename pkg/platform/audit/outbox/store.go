package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	// The postgres implementation uses FOR UPDATE SKIP LOCKED so several
	// workers can poll the same table.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	CountPending(ctx context.Context) (int64, error)

	// OldestPending returns the creation time of the oldest pending entry.
	// ok is false when nothing is pending.
	OldestPending(ctx context.Context) (createdAt time.Time, ok bool, err error)

	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
