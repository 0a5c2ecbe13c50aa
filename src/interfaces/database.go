package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IStore defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IStore interface {
	ISnapshotSink

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and applies migrations.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// SaveWatchList replaces the persisted watch-list, keeping order.
	SaveWatchList(ctx context.Context, symbols []string) error

	// -----------------------------------------------------------------------------

	// LoadWatchList returns the persisted watch-list (nil when never saved).
	LoadWatchList(ctx context.Context) ([]string, error)

	// -----------------------------------------------------------------------------

	// RecentSnapshots returns the newest history rows first.
	RecentSnapshots(ctx context.Context, limit int) ([]models.MSnapshotRecord, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes history older than the retention policy.
	CleanupOldData(ctx context.Context) (int64, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
