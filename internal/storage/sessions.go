package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	fserr "fsintel/internal/errors"
)

// BeginSession inserts a new session row with status running.
// Fails with SESSION_EXISTS when the session_id is already taken; a
// scan can never silently overwrite an earlier one.
func (db *DB) BeginSession(s *ScanSession) error {
	_, err := db.Exec(`
		INSERT INTO scan_sessions (session_id, root_path, scan_start_time, scan_config, scan_status)
		VALUES (?, ?, ?, ?, ?)
	`, s.SessionID, s.RootPath, formatTime(s.StartTime), s.Config, StatusRunning)
	if err != nil {
		if isUniqueViolation(err) {
			return fserr.New(fserr.SessionExists,
				fmt.Sprintf("scan session %q already exists", s.SessionID), err)
		}
		return fserr.New(fserr.StoreUnavailable, "failed to create scan session", err)
	}
	return nil
}

// FinishSession records the terminal state of a session. status must be
// completed or failed; errors is the serialized per-file issue list and
// may be empty.
func (db *DB) FinishSession(sessionID string, endedAt time.Time, status string, errorsJSON string) error {
	if status != StatusCompleted && status != StatusFailed {
		return fserr.NewInvalidParameterError("status", "must be completed or failed")
	}

	var errsVal interface{}
	if errorsJSON != "" {
		errsVal = errorsJSON
	}

	res, err := db.Exec(`
		UPDATE scan_sessions
		SET scan_end_time = ?, scan_status = ?, scan_errors = ?
		WHERE session_id = ?
	`, formatTime(endedAt), status, errsVal, sessionID)
	if err != nil {
		return fserr.New(fserr.StoreUnavailable, "failed to finish scan session", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fserr.New(fserr.SessionNotFound,
			fmt.Sprintf("scan session %q not found", sessionID), nil)
	}
	return nil
}

// GetSession loads one session row.
func (db *DB) GetSession(sessionID string) (*ScanSession, error) {
	row := db.QueryRow(`
		SELECT session_id, root_path, scan_start_time, scan_end_time, scan_config, scan_status, scan_errors
		FROM scan_sessions WHERE session_id = ?
	`, sessionID)

	s, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fserr.New(fserr.SessionNotFound,
			fmt.Sprintf("scan session %q not found", sessionID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// ListSessions returns all sessions, most recent first.
func (db *DB) ListSessions() ([]*ScanSession, error) {
	rows, err := db.Query(`
		SELECT session_id, root_path, scan_start_time, scan_end_time, scan_config, scan_status, scan_errors
		FROM scan_sessions ORDER BY scan_start_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*ScanSession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(scan func(dest ...interface{}) error) (*ScanSession, error) {
	var (
		s        ScanSession
		started  string
		ended    sql.NullString
		cfg      sql.NullString
		errsText sql.NullString
	)
	if err := scan(&s.SessionID, &s.RootPath, &started, &ended, &cfg, &s.Status, &errsText); err != nil {
		return nil, err
	}

	if t, err := time.Parse(timeLayout, started); err == nil {
		s.StartTime = t
	}
	if ended.Valid {
		s.EndTime = parseTimePtr(&ended.String)
	}
	if cfg.Valid {
		s.Config = cfg.String
	}
	if errsText.Valid {
		s.Errors = &errsText.String
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: scan_sessions.session_id")
}
