package models

import "time"

// MSnapshotRecord is one row of the persisted snapshot history.
type MSnapshotRecord struct {
	ID         string         `db:"id" json:"id"`
	Sequence   int64          `db:"sequence" json:"sequence"`
	Status     SnapshotStatus `db:"status" json:"status"`
	QuoteCount int            `db:"quote_count" json:"quoteCount"`
	ChartCount int            `db:"chart_count" json:"chartCount"`
	Payload    string         `db:"payload" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}
