package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createScanSessionsTable(tx); err != nil {
			return err
		}
		if err := createFilesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	// Migrations run sequentially as the schema evolves.
	if version == 0 {
		return db.initializeSchema()
	}

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createScanSessionsTable creates the scan_sessions table
func createScanSessionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS scan_sessions (
			session_id TEXT PRIMARY KEY,
			root_path TEXT NOT NULL,
			scan_start_time TEXT NOT NULL,
			scan_end_time TEXT,
			scan_config TEXT,
			scan_status TEXT NOT NULL DEFAULT 'running'
				CHECK(scan_status IN ('running', 'completed', 'failed')),
			scan_errors TEXT,

			-- A session is terminal iff it has an end time
			CHECK(
				(scan_status = 'running' AND scan_end_time IS NULL) OR
				(scan_status != 'running' AND scan_end_time IS NOT NULL)
			)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scan_sessions table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_scan_sessions_status ON scan_sessions(scan_status)",
		"CREATE INDEX IF NOT EXISTS idx_scan_sessions_start ON scan_sessions(scan_start_time)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createFilesTable creates the files table
func createFilesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_name TEXT NOT NULL,
			parent_directory TEXT NOT NULL,
			depth_level INTEGER NOT NULL,
			file_size INTEGER NOT NULL,
			file_extension TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT 'application/octet-stream',
			created_date TEXT,
			modified_date TEXT,
			accessed_date TEXT,
			permissions TEXT,
			owner_user TEXT,
			owner_group TEXT,
			hash_md5 TEXT,
			hash_sha256 TEXT,
			is_hidden INTEGER NOT NULL DEFAULT 0,
			is_symlink INTEGER NOT NULL DEFAULT 0,
			symlink_target TEXT,
			inode_number INTEGER,
			hard_link_count INTEGER,
			specific_metadata TEXT,

			-- Hashes are set together or not at all
			CHECK(
				(hash_md5 IS NULL AND hash_sha256 IS NULL) OR
				(hash_md5 IS NOT NULL AND hash_sha256 IS NOT NULL)
			),

			FOREIGN KEY (session_id) REFERENCES scan_sessions(session_id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create files table: %w", err)
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_files_path_session ON files(session_id, file_path)",
		"CREATE INDEX IF NOT EXISTS idx_files_session ON files(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_files_extension ON files(session_id, file_extension)",
		"CREATE INDEX IF NOT EXISTS idx_files_hash_md5 ON files(session_id, hash_md5)",
		"CREATE INDEX IF NOT EXISTS idx_files_parent ON files(session_id, parent_directory)",
		"CREATE INDEX IF NOT EXISTS idx_files_modified ON files(session_id, modified_date)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
