package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL DEFAULT '',
		origin       TEXT NOT NULL,
		destination  TEXT NOT NULL,
		start_date   TEXT NOT NULL,
		end_date     TEXT NOT NULL,
		currency     TEXT NOT NULL DEFAULT 'INR',
		total_budget REAL NOT NULL CHECK(total_budget > 0),
		status       TEXT NOT NULL DEFAULT 'draft'
		             CHECK(status IN ('draft','optimized','confirmed')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS budget_caps (
		id         TEXT PRIMARY KEY,
		trip_id    TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		category   TEXT NOT NULL
		           CHECK(category IN ('transport','stay','activity','misc')),
		cap        REAL NOT NULL CHECK(cap >= 0),
		created_at TEXT NOT NULL,
		UNIQUE(trip_id, category)
	)`,

	`CREATE TABLE IF NOT EXISTS preferences (
		trip_id        TEXT PRIMARY KEY REFERENCES trips(id) ON DELETE CASCADE,
		weight_cost    REAL NOT NULL,
		weight_time    REAL NOT NULL,
		weight_comfort REAL NOT NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS segments (
		id            TEXT PRIMARY KEY,
		trip_id       TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		category      TEXT NOT NULL
		              CHECK(category IN ('transport','stay','activity')),
		title         TEXT NOT NULL DEFAULT '',
		provider      TEXT NOT NULL DEFAULT '',
		start_ts      TEXT NOT NULL,
		end_ts        TEXT NOT NULL,
		duration_min  INTEGER NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
		comfort_score REAL NOT NULL DEFAULT 0 CHECK(comfort_score BETWEEN 0 AND 10),
		price         REAL NOT NULL DEFAULT 0 CHECK(price >= 0),
		currency      TEXT NOT NULL DEFAULT 'INR',
		locked        INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'planned'
		              CHECK(status IN ('planned','replanned','manual')),
		attributes    TEXT NOT NULL DEFAULT '{}',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_segments_trip_start ON segments(trip_id, start_ts)`,

	`CREATE TABLE IF NOT EXISTS quotes (
		id            TEXT PRIMARY KEY,
		trip_id       TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		segment_id    TEXT REFERENCES segments(id) ON DELETE SET NULL,
		category      TEXT NOT NULL
		              CHECK(category IN ('transport','stay','activity')),
		title         TEXT NOT NULL DEFAULT '',
		source        TEXT NOT NULL DEFAULT '',
		price         REAL NOT NULL CHECK(price >= 0),
		currency      TEXT NOT NULL DEFAULT 'INR',
		duration_min  INTEGER NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
		comfort_score REAL NOT NULL DEFAULT 0 CHECK(comfort_score BETWEEN 0 AND 10),
		attributes    TEXT NOT NULL DEFAULT '{}',
		seq           INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_quotes_trip_category ON quotes(trip_id, category)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_segment ON quotes(segment_id)`,

	`CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		trip_id    TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL
		           CHECK(kind IN ('delay','weather','price_change','fx_change')),
		payload    TEXT NOT NULL DEFAULT '{}',
		severity   TEXT NOT NULL DEFAULT 'info'
		           CHECK(severity IN ('info','warning','critical')),
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_trip ON events(trip_id, created_at)`,

	// Insertion order for quotes, used as the last ranking tie-break.
	`ALTER TABLE quotes ADD COLUMN seq INTEGER NOT NULL DEFAULT 0`,
}
