package query

import (
	"testing"
	"time"

	fserr "fsintel/internal/errors"
	"fsintel/internal/logging"
	"fsintel/internal/storage"
)

func setupEngine(t *testing.T) (*Engine, *storage.DB) {
	t.Helper()
	db, err := storage.Open(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEngine(db, logging.Discard()), db
}

func seedSession(t *testing.T, db *storage.DB, sessionID string, records []*storage.FileRecord) {
	t.Helper()
	err := db.BeginSession(&storage.ScanSession{
		SessionID: sessionID,
		RootPath:  "/data",
		StartTime: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:    storage.StatusRunning,
	})
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if err := db.InsertFiles(records); err != nil {
		t.Fatalf("InsertFiles: %v", err)
	}
}

func record(sessionID, path, name string, size int64, md5Hash string) *storage.FileRecord {
	mod := time.Date(2026, 7, 20, 12, 0, 0, 0, time.UTC)
	rec := &storage.FileRecord{
		SessionID:       sessionID,
		FilePath:        path,
		FileName:        name,
		ParentDirectory: "/data",
		FileSize:        size,
		FileExtension:   extOf(name),
		MimeType:        "application/octet-stream",
		Permissions:     "644",
		ModifiedDate:    &mod,
	}
	if md5Hash != "" {
		sha := "sha_" + md5Hash
		rec.HashMD5 = &md5Hash
		rec.HashSHA256 = &sha
	}
	return rec
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

func seedBasic(t *testing.T, db *storage.DB) {
	seedSession(t, db, "scan_q", []*storage.FileRecord{
		record("scan_q", "/data/a.txt", "a.txt", 10, ""),
		record("scan_q", "/data/b.py", "b.py", 20, ""),
		record("scan_q", "/data/c.log", "c.log", 30, ""),
	})
}

func TestDirectorySummary(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	summary, err := e.GetDirectorySummary("scan_q")
	if err != nil {
		t.Fatalf("GetDirectorySummary: %v", err)
	}
	if summary.FileCount != 3 {
		t.Errorf("file_count = %d, want 3", summary.FileCount)
	}
	if summary.TotalSize != 60 {
		t.Errorf("total_size = %d, want 60", summary.TotalSize)
	}
	if summary.AverageSize != 20 {
		t.Errorf("average_size = %v, want 20", summary.AverageSize)
	}
}

func TestLargestFiles(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	files, err := e.GetLargestFiles("scan_q", 2)
	if err != nil {
		t.Fatalf("GetLargestFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len = %d, want 2", len(files))
	}
	if files[0].Name != "c.log" || files[0].Size != 30 {
		t.Errorf("first = %+v, want c.log/30", files[0])
	}
	if files[1].Name != "b.py" || files[1].Size != 20 {
		t.Errorf("second = %+v, want b.py/20", files[1])
	}
}

func TestFindFilesByExtension(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	for _, input := range []string{".py", "py", "PY", " .PY "} {
		files, err := e.FindFilesByExtension("scan_q", input)
		if err != nil {
			t.Fatalf("FindFilesByExtension(%q): %v", input, err)
		}
		if len(files) != 1 || files[0].Name != "b.py" {
			t.Errorf("FindFilesByExtension(%q) = %+v, want b.py", input, files)
		}
	}
}

func TestDuplicateFiles(t *testing.T) {
	e, db := setupEngine(t)
	seedSession(t, db, "scan_dup", []*storage.FileRecord{
		record("scan_dup", "/x/a", "a", 100, "aaaa"),
		record("scan_dup", "/y/b", "b", 100, "aaaa"),
		record("scan_dup", "/z/c", "c", 50, "bbbb"),
		record("scan_dup", "/z/nohash", "nohash", 100, ""),
	})

	groups, err := e.GetDuplicateFiles("scan_dup")
	if err != nil {
		t.Fatalf("GetDuplicateFiles: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1 (singletons and null hashes excluded)", len(groups))
	}
	g := groups[0]
	if g.Count != 2 || g.WastedSpace != 100 {
		t.Errorf("group = %+v, want count=2 wasted=100", g)
	}
	if len(g.Paths) != 2 || g.Paths[0] != "/x/a" || g.Paths[1] != "/y/b" {
		t.Errorf("paths = %v", g.Paths)
	}
}

func TestCallFunctionDispatch(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	result, err := e.CallFunction("scan_q", "get_largest_files", []interface{}{float64(1)})
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	files := result.([]FileEntry)
	if len(files) != 1 || files[0].Name != "c.log" {
		t.Errorf("result = %+v, want c.log", files)
	}

	_, err = e.CallFunction("scan_q", "no_such_function", nil)
	if !fserr.HasCode(err, fserr.UnknownFunction) {
		t.Errorf("error = %v, want UNKNOWN_FUNCTION", err)
	}
}

func TestExecuteSQLRequiresSession(t *testing.T) {
	e, _ := setupEngine(t)

	_, err := e.ExecuteSQL("scan_missing", "SELECT 1", nil)
	if !fserr.HasCode(err, fserr.SessionNotFound) {
		t.Errorf("error = %v, want SESSION_NOT_FOUND", err)
	}
	_, err = e.ExecuteSQL("", "SELECT 1", nil)
	if !fserr.HasCode(err, fserr.InvalidParameter) {
		t.Errorf("error = %v, want INVALID_PARAMETER", err)
	}
}

func TestNaturalRouting(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	routed, err := e.Natural("scan_q", "Show me large files please")
	if err != nil {
		t.Fatalf("Natural: %v", err)
	}
	if routed.Intent != "largest_files" {
		t.Errorf("intent = %q, want largest_files", routed.Intent)
	}
	if files := routed.Result.([]FileEntry); files[0].Name != "c.log" {
		t.Errorf("first result = %+v", files[0])
	}

	routed, err = e.Natural("scan_q", "any duplicate files here?")
	if err != nil {
		t.Fatalf("Natural duplicates: %v", err)
	}
	if routed.Intent != "duplicate_files" {
		t.Errorf("intent = %q, want duplicate_files", routed.Intent)
	}

	routed, err = e.Natural("scan_q", "give me a summary")
	if err != nil {
		t.Fatalf("Natural summary: %v", err)
	}
	if routed.Intent != "directory_summary" {
		t.Errorf("intent = %q, want directory_summary", routed.Intent)
	}

	routed, err = e.Natural("scan_q", "files with extension .py")
	if err != nil {
		t.Fatalf("Natural extension: %v", err)
	}
	if routed.Intent != "files_by_extension" {
		t.Errorf("intent = %q, want files_by_extension", routed.Intent)
	}
	if files := routed.Result.([]FileEntry); len(files) != 1 || files[0].Name != "b.py" {
		t.Errorf("result = %+v, want b.py", routed.Result)
	}
}

func TestNaturalRouterMiss(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	_, err := e.Natural("scan_q", "what is the meaning of life")
	if !fserr.HasCode(err, fserr.RouterMiss) {
		t.Errorf("error = %v, want ROUTER_MISS", err)
	}
}

func TestNaturalExtensionNeedsKeyword(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	// An inline dotted name alone must not select the extension query.
	_, err := e.Natural("scan_q", "tell me about config.json")
	if !fserr.HasCode(err, fserr.RouterMiss) {
		t.Errorf("error = %v, want ROUTER_MISS", err)
	}

	// The keyword without a token has nothing to search for.
	_, err = e.Natural("scan_q", "list files by extension")
	if !fserr.HasCode(err, fserr.RouterMiss) {
		t.Errorf("error = %v, want ROUTER_MISS", err)
	}
}

func TestNaturalFirstMatchWins(t *testing.T) {
	e, db := setupEngine(t)
	seedBasic(t, db)

	// Mentions both large files and an extension; the earlier intent
	// in the table must win.
	routed, err := e.Natural("scan_q", "largest .py files")
	if err != nil {
		t.Fatalf("Natural: %v", err)
	}
	if routed.Intent != "largest_files" {
		t.Errorf("intent = %q, want largest_files (table order)", routed.Intent)
	}
}
