package db

import (
	"database/sql"
	"fmt"

	"timeless-mapper/internal/logger"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS analysis_history (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp         TEXT NOT NULL,
				request_id        TEXT NOT NULL DEFAULT '',
				socket_id         INTEGER NOT NULL,
				seed              INTEGER NOT NULL,
				faction           TEXT NOT NULL,
				keystone          TEXT NOT NULL,
				radius            REAL NOT NULL,
				radius_name       TEXT NOT NULL,
				total_tribute     INTEGER NOT NULL DEFAULT 0,
				notable_count     INTEGER NOT NULL DEFAULT 0,
				small_count       INTEGER NOT NULL DEFAULT 0,
				keystone_replaced INTEGER NOT NULL DEFAULT 0,
				duration_ms       INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_analysis_history_ts ON analysis_history(timestamp);

			CREATE TABLE IF NOT EXISTS analysis_nodes (
				analysis_id      INTEGER NOT NULL REFERENCES analysis_history(id) ON DELETE CASCADE,
				position         INTEGER NOT NULL,
				original_node_id INTEGER NOT NULL,
				original_name    TEXT NOT NULL,
				original_type    TEXT NOT NULL,
				new_name         TEXT NOT NULL,
				new_id           TEXT NOT NULL,
				distance         REAL NOT NULL,
				x                REAL NOT NULL,
				y                REAL NOT NULL,
				hops             INTEGER NOT NULL,
				tribute_value    INTEGER NOT NULL,
				PRIMARY KEY (analysis_id, position)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1 (analysis history)")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS saved_seeds (
				id        INTEGER PRIMARY KEY AUTOINCREMENT,
				socket_id INTEGER NOT NULL,
				seed      INTEGER NOT NULL,
				faction   TEXT NOT NULL,
				note      TEXT NOT NULL DEFAULT '',
				added_at  TEXT NOT NULL,
				UNIQUE(socket_id, seed, faction)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (saved seeds)")
	}

	return nil
}
