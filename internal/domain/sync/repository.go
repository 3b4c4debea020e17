package sync

import (
	"context"

	"github.com/google/uuid"
)

// ChangeLogRepository defines the persistence interface for the change log.
// The log is append-only.
type ChangeLogRepository interface {
	Append(ctx context.Context, entry *ChangeEntry) error
	// FindAfter returns up to limit entries with Seq > cursor, in sequence
	// order, filtered to entries visible to the given store (store-scoped
	// entries of other stores are excluded; nil-store entries are global).
	FindAfter(ctx context.Context, cursor int64, storeID uuid.UUID, limit int) ([]ChangeEntry, error)
	// LatestSeq returns the highest assigned sequence, 0 when empty.
	LatestSeq(ctx context.Context) (int64, error)
	// PruneBefore deletes entries older than the retention horizon.
	PruneBefore(ctx context.Context, keepSeq int64) (int64, error)
}

// IdempotencyStore remembers applied client operation IDs so replayed pushes
// are answered with the original result instead of being applied twice.
type IdempotencyStore interface {
	// Remember stores the serialized result for a client op ID. Returns false
	// if the ID was already present.
	Remember(ctx context.Context, clientOpID string, result []byte) (bool, error)
	// Lookup returns the stored result, or nil when unseen.
	Lookup(ctx context.Context, clientOpID string) ([]byte, error)
}
