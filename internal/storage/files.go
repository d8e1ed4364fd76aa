package storage

import (
	"database/sql"
	"fmt"
)

// defaultInsertChunk bounds the number of records per transaction; very
// large scans are flushed in pieces rather than one giant statement.
const defaultInsertChunk = 500

// InsertFiles batch-inserts file records, deduplicating on
// (session_id, file_path). Duplicate paths within the batch or already
// present for the session are silently ignored, matching the unique
// index on the table.
func (db *DB) InsertFiles(records []*FileRecord) error {
	return db.InsertFilesChunked(records, defaultInsertChunk)
}

// InsertFilesChunked is InsertFiles with an explicit chunk size.
func (db *DB) InsertFilesChunked(records []*FileRecord, chunk int) error {
	if len(records) == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = defaultInsertChunk
	}

	for start := 0; start < len(records); start += chunk {
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		if err := db.insertFileBatch(records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) insertFileBatch(records []*FileRecord) error {
	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO files (
				session_id, file_path, file_name, parent_directory, depth_level,
				file_size, file_extension, mime_type,
				created_date, modified_date, accessed_date,
				permissions, owner_user, owner_group,
				hash_md5, hash_sha256,
				is_hidden, is_symlink, symlink_target,
				inode_number, hard_link_count, specific_metadata
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare file insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			_, err := stmt.Exec(
				r.SessionID, r.FilePath, r.FileName, r.ParentDirectory, r.DepthLevel,
				r.FileSize, r.FileExtension, r.MimeType,
				formatTimePtr(r.CreatedDate), formatTimePtr(r.ModifiedDate), formatTimePtr(r.AccessedDate),
				r.Permissions, ptrVal(r.OwnerUser), ptrVal(r.OwnerGroup),
				ptrVal(r.HashMD5), ptrVal(r.HashSHA256),
				boolInt(r.IsHidden), boolInt(r.IsSymlink), ptrVal(r.SymlinkTarget),
				r.InodeNumber, r.HardLinkCount, ptrVal(r.SpecificMeta),
			)
			if err != nil {
				return fmt.Errorf("failed to insert file %s: %w", r.FilePath, err)
			}
		}
		return nil
	})
}

// CountFiles returns the number of file records in a session.
func (db *DB) CountFiles(sessionID string) (int64, error) {
	var n int64
	err := db.QueryRow("SELECT COUNT(*) FROM files WHERE session_id = ?", sessionID).Scan(&n)
	return n, err
}

func ptrVal(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
