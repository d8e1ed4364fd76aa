// Package tool is the JSON-in/JSON-out entry point. It owns the store
// handle and routes actions to the scanner, the query layer, and the
// intelligence pass; it performs no business logic of its own.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fsintel/internal/config"
	fserr "fsintel/internal/errors"
	"fsintel/internal/intelligence"
	"fsintel/internal/query"
	"fsintel/internal/scanner"
	"fsintel/internal/storage"
)

// Facade binds one root directory's store to the action dispatcher.
type Facade struct {
	root    string
	cfg     *config.Config
	db      *storage.DB
	engine  *query.Engine
	scanner *scanner.Scanner
	logger  *slog.Logger
}

// Open loads configuration for root and opens its store. The facade is
// the sole owner of the database handle; callers must Close it.
func Open(root string, logger *slog.Logger) (*Facade, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(root, logger)
	if err != nil {
		return nil, fserr.New(fserr.StoreUnavailable, "opening store", err)
	}
	return &Facade{
		root:    root,
		cfg:     cfg,
		db:      db,
		engine:  query.NewEngine(db, logger),
		scanner: scanner.New(db, logger, cfg.Workers, cfg.Batch.Size),
		logger:  logger,
	}, nil
}

func (f *Facade) Close() error {
	return f.db.Close()
}

// Engine exposes the query layer for in-process consumers such as the
// CLI report command.
func (f *Facade) Engine() *query.Engine { return f.engine }

// Request is the wire shape for every action. Field names are part of
// the external contract.
type Request struct {
	Action    string         `json:"action"`
	Path      string         `json:"path,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Config    *ScanOverrides `json:"config,omitempty"`

	SQL    string        `json:"sql,omitempty"`
	Params []interface{} `json:"params,omitempty"`

	Function string        `json:"function,omitempty"`
	Args     []interface{} `json:"args,omitempty"`

	Request string `json:"request,omitempty"`
}

// ScanOverrides adjusts the stored scan configuration for one scan.
// The hash limit crosses the boundary in megabytes and is converted
// internally.
type ScanOverrides struct {
	MaxDepth        *int   `json:"max_depth,omitempty"`
	IncludeHidden   *bool  `json:"include_hidden,omitempty"`
	CalculateHashes *bool  `json:"calculate_hashes,omitempty"`
	HashSizeLimitMB *int64 `json:"hash_size_limit_mb,omitempty"`
}

func (o *ScanOverrides) apply(base config.ScanConfig) config.ScanConfig {
	if o == nil {
		return base
	}
	if o.MaxDepth != nil {
		base.MaxDepth = *o.MaxDepth
	}
	if o.IncludeHidden != nil {
		base.IncludeHidden = *o.IncludeHidden
	}
	if o.CalculateHashes != nil {
		base.CalculateHashes = *o.CalculateHashes
	}
	if o.HashSizeLimitMB != nil {
		base.HashSizeLimitBytes = *o.HashSizeLimitMB * 1024 * 1024
	}
	return base
}

// Handle parses one request and returns one serialized response. Every
// outcome is a JSON object; failures carry success=false with a
// diagnostic message and never a stack trace.
func (f *Facade) Handle(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(fserr.New(fserr.InvalidParameter, "malformed request payload", err))
	}

	result, err := f.dispatch(ctx, &req)
	if err != nil {
		return errorResponse(err)
	}
	return successResponse(result)
}

func (f *Facade) dispatch(ctx context.Context, req *Request) (interface{}, error) {
	switch req.Action {
	case "scan":
		return f.handleScan(ctx, req)
	case "query_sql":
		return f.handleSQL(req)
	case "query_function":
		return f.handleFunction(req)
	case "query_natural":
		return f.handleNatural(req)
	case "report":
		return f.handleReport(req)
	case "list_sessions":
		return f.Sessions()
	default:
		return nil, fserr.New(fserr.UnknownAction, fmt.Sprintf("unknown action %q", req.Action), nil)
	}
}

// Scan runs one analysis session with the stored configuration plus
// any overrides.
func (f *Facade) Scan(ctx context.Context, path, sessionID string, overrides *ScanOverrides) (*scanner.Result, error) {
	if path == "" {
		return nil, fserr.NewInvalidParameterError("path", "is required")
	}
	return f.scanner.Analyze(ctx, path, sessionID, overrides.apply(f.cfg.Scan))
}

func (f *Facade) handleScan(ctx context.Context, req *Request) (interface{}, error) {
	res, err := f.Scan(ctx, req.Path, req.SessionID, req.Config)
	if err != nil {
		return nil, err
	}
	// Callers split on the "Session ID: " token; keep it stable.
	return fmt.Sprintf("Scan completed. Session ID: %s", res.SessionID), nil
}

func (f *Facade) handleSQL(req *Request) (interface{}, error) {
	if req.SQL == "" {
		return nil, fserr.NewInvalidParameterError("sql", "is required")
	}
	res, err := f.engine.ExecuteSQL(req.SessionID, req.SQL, req.Params)
	if err != nil {
		return nil, err
	}
	rows := res.Rows
	if rows == nil {
		rows = [][]interface{}{}
	}
	return rows, nil
}

func (f *Facade) handleFunction(req *Request) (interface{}, error) {
	if req.Function == "" {
		return nil, fserr.NewInvalidParameterError("function", "is required")
	}
	return f.engine.CallFunction(req.SessionID, req.Function, req.Args)
}

func (f *Facade) handleNatural(req *Request) (interface{}, error) {
	routed, err := f.engine.Natural(req.SessionID, req.Request)
	if err != nil {
		return nil, err
	}
	return routed.Result, nil
}

// Report runs the intelligence pass for a session and writes the
// configured artifacts, returning their paths.
func (f *Facade) Report(sessionID string) ([]string, error) {
	categories, err := intelligence.LoadCategories(f.root)
	if err != nil {
		return nil, err
	}
	analyzer := intelligence.NewAnalyzer(f.engine, categories, f.logger)
	analysis, err := analyzer.Analyze(sessionID)
	if err != nil {
		return nil, err
	}
	reportCfg, err := intelligence.LoadReportConfig(f.root)
	if err != nil {
		return nil, err
	}
	return intelligence.WriteReports(analysis, reportCfg, time.Now())
}

// Sessions lists every recorded scan session, newest first.
func (f *Facade) Sessions() ([]*storage.ScanSession, error) {
	return f.db.ListSessions()
}

func (f *Facade) handleReport(req *Request) (interface{}, error) {
	paths, err := f.Report(req.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"reports": paths}, nil
}

func successResponse(result interface{}) []byte {
	out, err := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    result,
	})
	if err != nil {
		return errorResponse(fserr.New(fserr.InternalError, "serializing response", err))
	}
	return out
}

func errorResponse(err error) []byte {
	msg := err.Error()
	var coreErr *fserr.CoreError
	if errors.As(err, &coreErr) {
		// Surface only the stable message, not wrapped internals.
		msg = coreErr.Message
	}
	out, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   msg,
		"code":    string(fserr.CodeOf(err)),
	})
	return out
}
