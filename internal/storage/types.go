// Package storage provides the durable session and file-record store
// behind the scanner and query layers. The backend is an embedded
// SQLite database; nothing outside this package speaks SQL for writes.
package storage

import "time"

// Session status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanSession describes one scanner invocation. Exactly one row exists
// per session_id; scan_end_time is set iff the status is terminal.
type ScanSession struct {
	SessionID string     `json:"session_id"`
	RootPath  string     `json:"root_path"`
	StartTime time.Time  `json:"scan_start_time"`
	EndTime   *time.Time `json:"scan_end_time,omitempty"`
	Config    string     `json:"scan_config,omitempty"` // serialized ScanConfig blob
	Status    string     `json:"scan_status"`
	Errors    *string    `json:"scan_errors,omitempty"` // serialized []ScanIssue
}

// ScanIssue records one per-file failure accumulated during a scan.
type ScanIssue struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FileRecord is the canonical per-file metadata tuple. Records are
// produced by the extractor, inserted in batches by the scanner, and
// immutable thereafter. Symlink records describe the link itself, not
// its target.
type FileRecord struct {
	SessionID       string     `json:"session_id"`
	FilePath        string     `json:"file_path"`
	FileName        string     `json:"file_name"`
	ParentDirectory string     `json:"parent_directory"`
	DepthLevel      int        `json:"depth_level"`
	FileSize        int64      `json:"file_size"`
	FileExtension   string     `json:"file_extension"` // lowercased, "" when none
	MimeType        string     `json:"mime_type"`
	CreatedDate     *time.Time `json:"created_date,omitempty"`
	ModifiedDate    *time.Time `json:"modified_date,omitempty"`
	AccessedDate    *time.Time `json:"accessed_date,omitempty"`
	Permissions     string     `json:"permissions"` // last three octal digits
	OwnerUser       *string    `json:"owner_user,omitempty"`
	OwnerGroup      *string    `json:"owner_group,omitempty"`
	HashMD5         *string    `json:"hash_md5,omitempty"`
	HashSHA256      *string    `json:"hash_sha256,omitempty"`
	IsHidden        bool       `json:"is_hidden"`
	IsSymlink       bool       `json:"is_symlink"`
	SymlinkTarget   *string    `json:"symlink_target,omitempty"`
	InodeNumber     uint64     `json:"inode_number"`
	HardLinkCount   uint64     `json:"hard_link_count"`
	SpecificMeta    *string    `json:"specific_metadata,omitempty"` // serialized format-specific blob
}

// timeLayout is the canonical text form for timestamps in the database.
// The fractional part is fixed width so that lexicographic comparison
// in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FormatTimestamp renders t in the canonical database form, for callers
// building comparison cutoffs in SQL.
func FormatTimestamp(t time.Time) string {
	return formatTime(t)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil
	}
	return &t
}
