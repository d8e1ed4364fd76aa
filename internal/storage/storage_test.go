package storage

import (
	"path/filepath"
	"testing"
	"time"

	fserr "fsintel/internal/errors"
	"fsintel/internal/logging"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSession(id string) *ScanSession {
	return &ScanSession{
		SessionID: id,
		RootPath:  "/tmp/tree",
		StartTime: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Config:    `{"max_depth":50}`,
		Status:    StatusRunning,
	}
}

func testRecord(sessionID, path string, size int64) *FileRecord {
	mod := time.Date(2026, 7, 15, 9, 30, 0, 0, time.UTC)
	return &FileRecord{
		SessionID:       sessionID,
		FilePath:        path,
		FileName:        filepath.Base(path),
		ParentDirectory: "/tmp/tree",
		FileSize:        size,
		MimeType:        "application/octet-stream",
		Permissions:     "644",
		ModifiedDate:    &mod,
	}
}

func TestOpenInitializesSchema(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatalf("getSchemaVersion: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_1")); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	got, err := db.GetSession("scan_1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != StatusRunning {
		t.Errorf("status = %q, want %q", got.Status, StatusRunning)
	}
	if got.EndTime != nil {
		t.Error("new session should have no end time")
	}

	end := time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC)
	if err := db.FinishSession("scan_1", end, StatusCompleted, ""); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	got, err = db.GetSession("scan_1")
	if err != nil {
		t.Fatalf("GetSession after finish: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, StatusCompleted)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("end time = %v, want %v", got.EndTime, end)
	}
}

func TestDuplicateSessionRejected(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_dup")); err != nil {
		t.Fatalf("first BeginSession: %v", err)
	}
	err := db.BeginSession(testSession("scan_dup"))
	if !fserr.HasCode(err, fserr.SessionExists) {
		t.Errorf("second BeginSession error = %v, want SESSION_EXISTS", err)
	}
}

func TestFinishUnknownSession(t *testing.T) {
	db := setupTestDB(t)

	err := db.FinishSession("scan_missing", time.Now(), StatusCompleted, "")
	if !fserr.HasCode(err, fserr.SessionNotFound) {
		t.Errorf("FinishSession error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSession("scan_missing")
	if !fserr.HasCode(err, fserr.SessionNotFound) {
		t.Errorf("GetSession error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestInsertFilesIgnoresDuplicatePaths(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_files")); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	records := []*FileRecord{
		testRecord("scan_files", "/tmp/tree/a.txt", 10),
		testRecord("scan_files", "/tmp/tree/a.txt", 10),
		testRecord("scan_files", "/tmp/tree/b.txt", 20),
	}
	if err := db.InsertFiles(records); err != nil {
		t.Fatalf("InsertFiles: %v", err)
	}

	count, err := db.CountFiles("scan_files")
	if err != nil {
		t.Fatalf("CountFiles: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (duplicate path ignored)", count)
	}
}

func TestInsertFilesChunked(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_chunk")); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	var records []*FileRecord
	for i := 0; i < 7; i++ {
		records = append(records, testRecord("scan_chunk", "/tmp/tree/f"+string(rune('a'+i))+".txt", int64(i)))
	}
	if err := db.InsertFilesChunked(records, 3); err != nil {
		t.Fatalf("InsertFilesChunked: %v", err)
	}

	count, err := db.CountFiles("scan_chunk")
	if err != nil {
		t.Fatalf("CountFiles: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	old := testSession("scan_old")
	old.StartTime = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	recent := testSession("scan_new")
	recent.StartTime = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for _, s := range []*ScanSession{old, recent} {
		if err := db.BeginSession(s); err != nil {
			t.Fatalf("BeginSession(%s): %v", s.SessionID, err)
		}
	}

	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	if sessions[0].SessionID != "scan_new" {
		t.Errorf("first session = %q, want scan_new", sessions[0].SessionID)
	}
}

func TestExecuteRejectsMutations(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_exec")); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if err := db.InsertFiles([]*FileRecord{testRecord("scan_exec", "/tmp/tree/a.txt", 10)}); err != nil {
		t.Fatalf("InsertFiles: %v", err)
	}

	rejected := []string{
		"DELETE FROM files WHERE session_id = ?",
		"UPDATE files SET file_size = 0",
		"DROP TABLE files",
		"INSERT INTO files (session_id) VALUES ('x')",
		"SELECT 1; DELETE FROM files",
		"PRAGMA journal_mode = DELETE",
		"REPLACE INTO files (session_id) VALUES ('x')",
	}
	for _, stmt := range rejected {
		_, _, err := db.Execute(stmt, nil)
		if !fserr.HasCode(err, fserr.QueryRejected) {
			t.Errorf("Execute(%q) error = %v, want QUERY_REJECTED", stmt, err)
		}
	}

	count, err := db.CountFiles("scan_exec")
	if err != nil {
		t.Fatalf("CountFiles: %v", err)
	}
	if count != 1 {
		t.Errorf("count after rejected statements = %d, want 1", count)
	}
}

func TestExecuteAllowsReads(t *testing.T) {
	db := setupTestDB(t)

	if err := db.BeginSession(testSession("scan_read")); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if err := db.InsertFiles([]*FileRecord{testRecord("scan_read", "/tmp/tree/a.txt", 42)}); err != nil {
		t.Fatalf("InsertFiles: %v", err)
	}

	cols, rows, err := db.Execute(
		"SELECT file_path, file_size FROM files WHERE session_id = ?",
		[]interface{}{"scan_read"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cols) != 2 || cols[0] != "file_path" {
		t.Errorf("columns = %v", cols)
	}
	if len(rows) != 1 || rows[0][1].(int64) != 42 {
		t.Errorf("rows = %v", rows)
	}

	// WITH and scalar replace() are legitimate reads.
	for _, stmt := range []string{
		"WITH big AS (SELECT * FROM files WHERE file_size > 10) SELECT COUNT(*) FROM big",
		"SELECT replace(file_path, '/tmp', '') FROM files",
		"SELECT COUNT(*) FROM files; ",
	} {
		if _, _, err := db.Execute(stmt, nil); err != nil {
			t.Errorf("Execute(%q) unexpected error: %v", stmt, err)
		}
	}
}

func TestExecuteStripsCommentTricks(t *testing.T) {
	db := setupTestDB(t)

	// A mutation hidden behind comments must still be rejected.
	_, _, err := db.Execute("SELECT 1 /* harmless */; DELETE FROM files -- cleanup", nil)
	if !fserr.HasCode(err, fserr.QueryRejected) {
		t.Errorf("error = %v, want QUERY_REJECTED", err)
	}
}
