package storage

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	log := logger.NewLoggerWithWriter(io.Discard, "ERROR", "Store")
	store := NewSQLiteStore(models.MStorageConfig{
		DBPath:        filepath.Join(t.TempDir(), "dashboard.db"),
		RetentionDays: 7,
	}, log)
	require.NoError(t, store.Initialize(t.Context()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func snapshotAt(id string, seq uint64, status models.SnapshotStatus, at time.Time) models.MSnapshot {
	snap := models.EmptySnapshot([]string{"NASDAQ:AAPL"})
	snap.ID = id
	snap.Sequence = seq
	snap.Status = status
	snap.Quotes = []models.MQuote{{Symbol: "AAPL", Price: "190.1"}}
	snap.LastUpdated = &at
	return snap
}

// -----------------------------------------------------------------------------

func TestSQLStore_InitializeIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// Reopen the same file: migrations are already applied.
	again := NewSQLiteStore(store.Config, store.Logger)
	require.NoError(t, again.Initialize(t.Context()))
	defer again.Close()

	require.Equal(t, "sql:sqlite", store.Name())
}

func TestSQLStore_WatchListRoundTrip(t *testing.T) {
	t.Parallel()

	// Arrange
	store := newTestStore(t)
	ctx := t.Context()

	// Act & Assert
	empty, err := store.LoadWatchList(ctx)
	require.NoError(t, err)
	require.Nil(t, empty)

	require.NoError(t, store.SaveWatchList(ctx, []string{"NASDAQ:MSFT", "NASDAQ:AAPL", "TVC:GOLD"}))
	got, err := store.LoadWatchList(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"NASDAQ:MSFT", "NASDAQ:AAPL", "TVC:GOLD"}, got)

	require.NoError(t, store.SaveWatchList(ctx, []string{"NASDAQ:NVDA"}))
	got, err = store.LoadWatchList(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"NASDAQ:NVDA"}, got)
}

func TestSQLStore_PublishAndHistory(t *testing.T) {
	t.Parallel()

	// Arrange
	store := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base.Add(time.Hour) }

	// Act
	require.NoError(t, store.Publish(ctx, snapshotAt("a", 1, models.StatusLoading, base)))
	require.NoError(t, store.Publish(ctx, snapshotAt("b", 1, models.StatusSuccess, base)))
	require.NoError(t, store.Publish(ctx, snapshotAt("c", 2, models.StatusMock, base.Add(time.Minute))))
	require.NoError(t, store.Publish(ctx, snapshotAt("d", 3, models.StatusError, base.Add(2*time.Minute))))

	// Assert
	history, err := store.RecentSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "d", history[0].ID)
	require.Equal(t, models.StatusError, history[0].Status)
	require.Equal(t, "c", history[1].ID)
	require.Equal(t, int64(2), history[1].Sequence)
	require.Equal(t, 1, history[1].QuoteCount)
	require.True(t, history[1].CreatedAt.Equal(base.Add(time.Minute)))

	var decoded models.MSnapshot
	require.NoError(t, json.Unmarshal([]byte(history[1].Payload), &decoded))
	require.Equal(t, "AAPL", decoded.Quotes[0].Symbol)

	all, err := store.RecentSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3, "loading snapshots are not recorded")
}

func TestSQLStore_CleanupOldData(t *testing.T) {
	t.Parallel()

	// Arrange
	store := newTestStore(t)
	ctx := t.Context()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Publish(ctx, snapshotAt("old", 1, models.StatusSuccess, now.AddDate(0, 0, -10))))
	require.NoError(t, store.Publish(ctx, snapshotAt("new", 2, models.StatusSuccess, now.AddDate(0, 0, -1))))

	// Act
	removed, err := store.CleanupOldData(ctx)

	// Assert
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	left, err := store.RecentSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "new", left[0].ID)
}

func TestNewStore_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewStore(models.MStorageConfig{DBType: "mongo"}, logger.NewLoggerWithWriter(io.Discard, "ERROR", "Store"))

	var cfgErr *helpers.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	s, err := NewStore(models.MStorageConfig{DBType: "postgres", DBConnectionString: "postgres://x"}, nil)
	require.NoError(t, err)
	require.Equal(t, "sql:postgres", s.Name())
}

// -----------------------------------------------------------------------------

func TestRedisMirror_UnreachableServer(t *testing.T) {
	t.Parallel()

	// Arrange
	mirror := NewRedisMirror(models.MRedisConfig{Addr: "127.0.0.1:1"}, logger.NewLoggerWithWriter(io.Discard, "ERROR", "Redis"))
	defer mirror.Close()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	// Act
	err := mirror.Publish(ctx, snapshotAt("x", 1, models.StatusSuccess, time.Now()))

	// Assert
	var storeErr *helpers.StorageError
	require.ErrorAs(t, err, &storeErr)
	require.Error(t, mirror.Ping(ctx))
	require.Equal(t, "redis", mirror.Name())
	require.Equal(t, defaultRedisPrefix, mirror.prefix)
	require.Equal(t, defaultRedisChannel, mirror.channel)
}
