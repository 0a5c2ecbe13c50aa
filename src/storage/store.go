package storage

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ interfaces.IStore = (*SQLStore)(nil)

// -----------------------------------------------------------------------------

// SQLStore persists the watch-list and the snapshot history. The same code
// runs against SQLite and Postgres; only the driver and the migration dialect
// differ.
type SQLStore struct {
	Config  models.MStorageConfig
	DB      *sqlx.DB
	Logger  *logger.Logger
	driver  string
	dsn     string
	dialect goose.Dialect
	pragmas []string
	now     func() time.Time
}

type snapshotRow struct {
	ID         string `db:"id"`
	Sequence   int64  `db:"sequence"`
	Status     string `db:"status"`
	QuoteCount int    `db:"quote_count"`
	ChartCount int    `db:"chart_count"`
	Payload    string `db:"payload"`
	CreatedAt  int64  `db:"created_at"`
}

// -----------------------------------------------------------------------------

// NewStore picks the backend from cfg.DBType ("sqlite" or "postgres").
func NewStore(cfg models.MStorageConfig, log *logger.Logger) (*SQLStore, error) {
	switch strings.ToLower(cfg.DBType) {
	case "", "sqlite", "sqlite3":
		return NewSQLiteStore(cfg, log), nil
	case "postgres", "postgresql":
		return NewPostgresStore(cfg, log), nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unknown db_type %q", cfg.DBType), nil)
	}
}

// -----------------------------------------------------------------------------

func (s *SQLStore) Name() string {
	return "sql:" + s.driver
}

// -----------------------------------------------------------------------------

func (s *SQLStore) Initialize(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn)
	if err != nil {
		return helpers.NewStorageError("connect "+s.driver, err)
	}
	s.DB = db

	for _, p := range s.pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			s.Logger.Warning("Failed to apply %q: %v", p, err)
		}
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return helpers.NewStorageError("load migrations", err)
	}
	provider, err := goose.NewProvider(s.dialect, db.DB, sub)
	if err != nil {
		return helpers.NewStorageError("prepare migrations", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return helpers.NewStorageError("apply migrations", err)
	}

	s.Logger.Info("Store ready (%s, %d migrations applied)", s.driver, len(results))
	return nil
}

// -----------------------------------------------------------------------------

// Publish records settled snapshots. Idle and loading states are transient
// and never reach the history.
func (s *SQLStore) Publish(ctx context.Context, snap models.MSnapshot) error {
	if snap.Status == models.StatusIdle || snap.Status == models.StatusLoading {
		return nil
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return helpers.NewStorageError("encode snapshot", err)
	}

	created := s.now().UTC()
	if snap.LastUpdated != nil {
		created = snap.LastUpdated.UTC()
	}

	query := s.DB.Rebind(`
		INSERT INTO snapshots (id, sequence, status, quote_count, chart_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			sequence = excluded.sequence,
			status = excluded.status,
			quote_count = excluded.quote_count,
			chart_count = excluded.chart_count,
			payload = excluded.payload,
			created_at = excluded.created_at
	`)
	_, err = s.DB.ExecContext(ctx, query,
		snap.ID, int64(snap.Sequence), string(snap.Status), len(snap.Quotes), len(snap.Charts), string(payload), created.UnixMilli())
	if err != nil {
		return helpers.NewStorageError("insert snapshot", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLStore) SaveWatchList(ctx context.Context, symbols []string) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return helpers.NewStorageError("begin watch-list tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM watch_list"); err != nil {
		return helpers.NewStorageError("clear watch-list", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind("INSERT INTO watch_list (position, symbol) VALUES (?, ?)"))
	if err != nil {
		return helpers.NewStorageError("prepare watch-list insert", err)
	}
	defer stmt.Close()

	for i, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, i, sym); err != nil {
			return helpers.NewStorageError("insert watch-list symbol "+sym, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewStorageError("commit watch-list", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLStore) LoadWatchList(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := s.DB.SelectContext(ctx, &symbols, "SELECT symbol FROM watch_list ORDER BY position"); err != nil {
		return nil, helpers.NewStorageError("load watch-list", err)
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	return symbols, nil
}

// -----------------------------------------------------------------------------

func (s *SQLStore) RecentSnapshots(ctx context.Context, limit int) ([]models.MSnapshotRecord, error) {
	limit = utils.IntOr(limit, utils.DefaultHistoryLimit)

	var rows []snapshotRow
	query := s.DB.Rebind(`
		SELECT id, sequence, status, quote_count, chart_count, payload, created_at
		FROM snapshots
		ORDER BY created_at DESC, sequence DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, helpers.NewStorageError("load history", err)
	}

	out := make([]models.MSnapshotRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MSnapshotRecord{
			ID:         r.ID,
			Sequence:   r.Sequence,
			Status:     models.SnapshotStatus(r.Status),
			QuoteCount: r.QuoteCount,
			ChartCount: r.ChartCount,
			Payload:    r.Payload,
			CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *SQLStore) CleanupOldData(ctx context.Context) (int64, error) {
	days := utils.IntOr(s.Config.RetentionDays, utils.DefaultRetentionDays)
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	s.Logger.Debug("Cleaning up snapshots older than %d days (before %s)", days, cutoff.Format(time.RFC3339))

	res, err := s.DB.ExecContext(ctx, s.DB.Rebind("DELETE FROM snapshots WHERE created_at < ?"), cutoff.UnixMilli())
	if err != nil {
		return 0, helpers.NewStorageError("cleanup snapshots", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, helpers.NewStorageError("cleanup snapshots", err)
	}

	s.Logger.Info("Cleanup completed, %d snapshots removed", n)
	return n, nil
}

// -----------------------------------------------------------------------------

func (s *SQLStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
