package storage

import (
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "market_dashboard.db"

// -----------------------------------------------------------------------------

// NewSQLiteStore returns a store backed by the pure-Go SQLite driver. The file
// is created on Initialize when missing.
func NewSQLiteStore(cfg models.MStorageConfig, log *logger.Logger) *SQLStore {
	path := cfg.DBPath
	if path == "" {
		path = defaultSQLitePath
	}

	return &SQLStore{
		Config:  cfg,
		Logger:  log,
		driver:  "sqlite",
		dsn:     path,
		dialect: goose.DialectSQLite3,
		pragmas: []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA busy_timeout = 5000;",
		},
		now: time.Now,
	}
}
