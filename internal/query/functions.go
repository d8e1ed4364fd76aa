package query

import (
	"fmt"
	"strings"

	fserr "fsintel/internal/errors"
)

// DirectorySummary aggregates a whole session.
type DirectorySummary struct {
	FileCount   int64   `json:"file_count"`
	TotalSize   int64   `json:"total_size"`
	AverageSize float64 `json:"average_size"`
}

// FileEntry is the row shape shared by the list-returning queries.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DuplicateGroup is one set of byte-identical files. WastedSpace is the
// total size of the group minus one copy.
type DuplicateGroup struct {
	Hash        string   `json:"hash"`
	Count       int64    `json:"count"`
	Paths       []string `json:"paths"`
	WastedSpace int64    `json:"wasted_space"`
}

const defaultLimit = 10

// GetDirectorySummary returns the session-wide count, total, and
// average file size. An empty session yields zeros, not an error.
func (e *Engine) GetDirectorySummary(sessionID string) (*DirectorySummary, error) {
	if err := e.requireSession(sessionID); err != nil {
		return nil, err
	}
	row := e.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(file_size), 0), COALESCE(AVG(file_size), 0)
		FROM files WHERE session_id = ?`, sessionID)
	var s DirectorySummary
	if err := row.Scan(&s.FileCount, &s.TotalSize, &s.AverageSize); err != nil {
		return nil, fmt.Errorf("directory summary: %w", err)
	}
	return &s, nil
}

// GetLargestFiles returns the limit biggest files, size descending with
// path as the tiebreak so results are stable.
func (e *Engine) GetLargestFiles(sessionID string, limit int) ([]FileEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return e.fileList(sessionID, `
		SELECT file_name, file_path, file_size
		FROM files WHERE session_id = ?
		ORDER BY file_size DESC, file_path ASC
		LIMIT ?`, sessionID, limit)
}

// FindFilesByExtension matches an extension case-insensitively. The
// leading dot is optional on input.
func (e *Engine) FindFilesByExtension(sessionID, extension string) ([]FileEntry, error) {
	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext == "" {
		return nil, fserr.NewInvalidParameterError("extension", "must not be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return e.fileList(sessionID, `
		SELECT file_name, file_path, file_size
		FROM files WHERE session_id = ? AND file_extension = ?
		ORDER BY file_size DESC, file_path ASC`, sessionID, ext)
}

// GetRecentFiles returns the most recently modified files.
func (e *Engine) GetRecentFiles(sessionID string, limit int) ([]FileEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return e.fileList(sessionID, `
		SELECT file_name, file_path, file_size
		FROM files WHERE session_id = ? AND modified_date IS NOT NULL
		ORDER BY modified_date DESC, file_path ASC
		LIMIT ?`, sessionID, limit)
}

// GetOldFiles returns the files untouched the longest.
func (e *Engine) GetOldFiles(sessionID string, limit int) ([]FileEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return e.fileList(sessionID, `
		SELECT file_name, file_path, file_size
		FROM files WHERE session_id = ? AND modified_date IS NOT NULL
		ORDER BY modified_date ASC, file_path ASC
		LIMIT ?`, sessionID, limit)
}

// GetDuplicateFiles groups files by MD5, keeps groups of two or more,
// and orders them by reclaimable space. Files without hashes never
// participate.
func (e *Engine) GetDuplicateFiles(sessionID string) ([]DuplicateGroup, error) {
	if err := e.requireSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := e.db.Query(`
		SELECT hash_md5, COUNT(*),
		       SUM(file_size) - MIN(file_size),
		       GROUP_CONCAT(file_path, char(10) ORDER BY file_path ASC)
		FROM files
		WHERE session_id = ? AND hash_md5 IS NOT NULL
		GROUP BY hash_md5
		HAVING COUNT(*) > 1
		ORDER BY SUM(file_size) - MIN(file_size) DESC, hash_md5 ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("duplicate files: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		var paths string
		if err := rows.Scan(&g.Hash, &g.Count, &g.WastedSpace, &paths); err != nil {
			return nil, fmt.Errorf("duplicate files: %w", err)
		}
		g.Paths = strings.Split(paths, "\n")
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (e *Engine) fileList(sessionID, sqlQuery string, args ...interface{}) ([]FileEntry, error) {
	if err := e.requireSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := e.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("file list query: %w", err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var f FileEntry
		if err := rows.Scan(&f.Name, &f.Path, &f.Size); err != nil {
			return nil, fmt.Errorf("file list scan: %w", err)
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

// CallFunction dispatches a named query by its wire name. Arguments are
// positional and loosely typed, as they arrive from the facade.
func (e *Engine) CallFunction(sessionID, name string, args []interface{}) (interface{}, error) {
	switch name {
	case "get_directory_summary":
		return e.GetDirectorySummary(sessionID)
	case "get_largest_files":
		return e.GetLargestFiles(sessionID, intArg(args, 0, defaultLimit))
	case "find_files_by_extension":
		ext, err := stringArg(args, 0, "extension")
		if err != nil {
			return nil, err
		}
		return e.FindFilesByExtension(sessionID, ext)
	case "get_duplicate_files":
		return e.GetDuplicateFiles(sessionID)
	case "get_recent_files":
		return e.GetRecentFiles(sessionID, intArg(args, 0, defaultLimit))
	case "get_old_files":
		return e.GetOldFiles(sessionID, intArg(args, 0, defaultLimit))
	default:
		return nil, fserr.New(fserr.UnknownFunction, fmt.Sprintf("unknown query function %q", name), nil)
	}
}

// intArg reads an optional integer argument that JSON decoding may have
// turned into a float64.
func intArg(args []interface{}, idx, fallback int) int {
	if idx >= len(args) {
		return fallback
	}
	switch v := args[idx].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func stringArg(args []interface{}, idx int, name string) (string, error) {
	if idx >= len(args) {
		return "", fserr.NewInvalidParameterError(name, "is required")
	}
	s, ok := args[idx].(string)
	if !ok {
		return "", fserr.NewInvalidParameterError(name, "must be a string")
	}
	return s, nil
}
