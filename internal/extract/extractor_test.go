package extract

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fsintel/internal/config"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestExtractBasicFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Report.TXT", []byte("hello world"))

	rec, err := Extract(path, "scan_t", 2, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec == nil {
		t.Fatal("record is nil")
	}

	if rec.FileName != "Report.TXT" {
		t.Errorf("name = %q", rec.FileName)
	}
	if rec.FileExtension != ".txt" {
		t.Errorf("extension = %q, want .txt (lowercased)", rec.FileExtension)
	}
	if rec.FileSize != 11 {
		t.Errorf("size = %d, want 11", rec.FileSize)
	}
	if rec.DepthLevel != 2 {
		t.Errorf("depth = %d, want 2", rec.DepthLevel)
	}
	if rec.ParentDirectory != dir {
		t.Errorf("parent = %q, want %q", rec.ParentDirectory, dir)
	}
	if rec.IsHidden {
		t.Error("Report.TXT should not be hidden")
	}
	if rec.ModifiedDate == nil {
		t.Error("modified date missing")
	}
	if len(rec.Permissions) != 3 {
		t.Errorf("permissions = %q, want three octal digits", rec.Permissions)
	}
	if rec.MimeType == "" {
		t.Error("mime type empty")
	}
}

func TestExtractHiddenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", []byte("SECRET=1"))

	rec, err := Extract(path, "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rec.IsHidden {
		t.Error(".env should be hidden")
	}
}

func TestHashGating(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultScanConfig()
	cfg.HashSizeLimitBytes = 16

	cases := []struct {
		name    string
		content []byte
		hashed  bool
	}{
		{"empty.bin", nil, false},
		{"small.bin", []byte("0123456789"), true},
		{"at_limit.bin", make([]byte, 16), false},
		{"over_limit.bin", make([]byte, 17), false},
	}
	for _, tc := range cases {
		path := writeFile(t, dir, tc.name, tc.content)
		rec, err := Extract(path, "scan_t", 0, cfg)
		if err != nil {
			t.Fatalf("Extract(%s): %v", tc.name, err)
		}
		got := rec.HashMD5 != nil
		if got != tc.hashed {
			t.Errorf("%s: hashed = %v, want %v", tc.name, got, tc.hashed)
		}
		// Both hashes or neither.
		if (rec.HashMD5 == nil) != (rec.HashSHA256 == nil) {
			t.Errorf("%s: md5 and sha256 presence must match", tc.name)
		}
	}
}

func TestHashValues(t *testing.T) {
	dir := t.TempDir()
	content := []byte("known content")
	path := writeFile(t, dir, "k.txt", content)

	rec, err := Extract(path, "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	sum := md5.Sum(content)
	if rec.HashMD5 == nil || *rec.HashMD5 != hex.EncodeToString(sum[:]) {
		t.Errorf("md5 = %v, want %s", rec.HashMD5, hex.EncodeToString(sum[:]))
	}
}

func TestHashesDisabled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "n.txt", []byte("data"))

	cfg := config.DefaultScanConfig()
	cfg.CalculateHashes = false
	rec, err := Extract(path, "scan_t", 0, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.HashMD5 != nil || rec.HashSHA256 != nil {
		t.Error("hashes should be nil when disabled")
	}
}

func TestExtractSymlink(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", []byte("x"))
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	rec, err := Extract(link, "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rec.IsSymlink {
		t.Error("IsSymlink = false")
	}
	if rec.SymlinkTarget == nil || *rec.SymlinkTarget != target {
		t.Errorf("target = %v, want %q", rec.SymlinkTarget, target)
	}
}

func TestExtractMissingFileSkips(t *testing.T) {
	rec, err := Extract(filepath.Join(t.TempDir(), "gone.txt"), "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Error("missing file should yield nil record")
	}
}

func TestImageMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1024, 768))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	rec, err := Extract(path, "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.SpecificMeta == nil {
		t.Fatal("specific metadata missing for PNG")
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(*rec.SpecificMeta), &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta["format"] != "PNG" {
		t.Errorf("format = %v, want PNG", meta["format"])
	}
	if meta["size"] != "1024x768" {
		t.Errorf("size = %v, want 1024x768", meta["size"])
	}
	if !strings.HasPrefix(rec.MimeType, "image/") {
		t.Errorf("mime = %q, want image/*", rec.MimeType)
	}
}

func TestNonImageHasNoMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.txt", []byte("just text"))

	rec, err := Extract(path, "scan_t", 0, config.DefaultScanConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.SpecificMeta != nil {
		t.Errorf("unexpected metadata: %s", *rec.SpecificMeta)
	}
}
