// Package query is the read side of the store: raw SQL restricted to
// SELECT statements, a catalog of named semantic queries, and a
// keyword router that maps plain-language requests onto the catalog.
package query

import (
	"log/slog"

	fserr "fsintel/internal/errors"
	"fsintel/internal/storage"
)

// Engine answers queries against one store. All entry points verify
// the session exists before touching the files table so a typo in a
// session id surfaces as SESSION_NOT_FOUND rather than an empty result.
type Engine struct {
	db     *storage.DB
	logger *slog.Logger
}

func NewEngine(db *storage.DB, logger *slog.Logger) *Engine {
	return &Engine{db: db, logger: logger}
}

// SQLResult carries a raw query result with its column order preserved.
type SQLResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// ExecuteSQL runs one read-only statement. The session check guards
// against querying a store the caller has no session in; the statement
// itself may join or aggregate freely.
func (e *Engine) ExecuteSQL(sessionID, sqlQuery string, params []interface{}) (*SQLResult, error) {
	if err := e.requireSession(sessionID); err != nil {
		return nil, err
	}
	cols, rows, err := e.db.Execute(sqlQuery, params)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("sql query executed", "session_id", sessionID, "rows", len(rows))
	return &SQLResult{Columns: cols, Rows: rows}, nil
}

// Session exposes the session row so downstream consumers can anchor
// time-relative calculations to the scan itself.
func (e *Engine) Session(sessionID string) (*storage.ScanSession, error) {
	if sessionID == "" {
		return nil, fserr.NewInvalidParameterError("session_id", "must not be empty")
	}
	return e.db.GetSession(sessionID)
}

func (e *Engine) requireSession(sessionID string) error {
	if sessionID == "" {
		return fserr.NewInvalidParameterError("session_id", "must not be empty")
	}
	_, err := e.db.GetSession(sessionID)
	return err
}
