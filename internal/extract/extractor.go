// Package extract turns a single path into a FileRecord. The extractor
// performs no database writes; its only I/O is reading the target file.
// Failures collapse into a skipped record or a nulled sub-field, never
// a panic.
package extract

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"fsintel/internal/config"
	"fsintel/internal/storage"
)

// fallbackMime is recorded whenever MIME detection fails.
const fallbackMime = "application/octet-stream"

// Extract produces the metadata record for one file. A (nil, nil)
// return means the file cannot be safely characterized (missing,
// permission denied, transient race) and should be skipped without
// aborting the scan. A non-nil error marks an unexpected failure the
// scanner records against the session.
func Extract(path, sessionID string, depth int, cfg config.ScanConfig) (*storage.FileRecord, error) {
	// Never follow symlinks for metadata; the record describes the
	// link itself.
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, nil
		}
		return nil, err
	}

	name := fi.Name()
	rec := &storage.FileRecord{
		SessionID:       sessionID,
		FilePath:        path,
		FileName:        name,
		ParentDirectory: filepath.Dir(path),
		DepthLevel:      depth,
		FileSize:        fi.Size(),
		FileExtension:   strings.ToLower(filepath.Ext(name)),
		MimeType:        fallbackMime,
		Permissions:     permissionOctal(fi.Mode()),
		IsHidden:        strings.HasPrefix(name, "."),
		IsSymlink:       fi.Mode()&os.ModeSymlink != 0,
	}

	mod := fi.ModTime()
	rec.ModifiedDate = &mod

	if rec.IsSymlink {
		if target, err := os.Readlink(path); err == nil {
			rec.SymlinkTarget = &target
		}
	}

	// Platform-specific stat fields; on platforms without POSIX
	// semantics the owner fields stay null and times fall back to mtime.
	applySysInfo(fi, rec)

	if mt, err := mimetype.DetectFile(path); err == nil {
		rec.MimeType = mt.String()
	}

	if cfg.CalculateHashes && rec.FileSize > 0 && rec.FileSize < cfg.HashSizeLimitBytes {
		md5Hex, shaHex, err := hashFile(path)
		if err == nil {
			rec.HashMD5 = &md5Hex
			rec.HashSHA256 = &shaHex
		}
	}

	if meta := specificMetadata(path, rec.MimeType); meta != nil {
		if blob, err := json.Marshal(meta); err == nil {
			s := string(blob)
			rec.SpecificMeta = &s
		}
	}

	return rec, nil
}

// hashFile computes MD5 and SHA-256 in a single read pass.
func hashFile(path string) (md5Hex, shaHex string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	md5Sum := md5.New()
	shaSum := sha256.New()
	if _, err := io.Copy(io.MultiWriter(md5Sum, shaSum), f); err != nil {
		return "", "", err
	}
	return hex.EncodeToString(md5Sum.Sum(nil)), hex.EncodeToString(shaSum.Sum(nil)), nil
}

// permissionOctal renders the last three octal digits of the mode.
func permissionOctal(mode os.FileMode) string {
	perm := mode.Perm()
	digits := []byte{
		'0' + byte((perm>>6)&7),
		'0' + byte((perm>>3)&7),
		'0' + byte(perm&7),
	}
	return string(digits)
}
