// Package scanner orchestrates a directory analysis session: it walks
// the tree, fans extraction out across a worker pool, batches the
// resulting records into the store, and closes the session with a
// terminal status. Per-file failures accumulate as session issues; only
// orchestration failures abort the scan.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fsintel/internal/config"
	fserr "fsintel/internal/errors"
	"fsintel/internal/extract"
	"fsintel/internal/storage"
)

// Scanner runs analysis sessions against a single store.
type Scanner struct {
	db        *storage.DB
	logger    *slog.Logger
	workers   int
	batchSize int
}

// Result summarizes one finished session.
type Result struct {
	SessionID    string              `json:"session_id"`
	RootPath     string              `json:"root_path"`
	FilesIndexed int                 `json:"files_indexed"`
	Duration     time.Duration       `json:"-"`
	Issues       []storage.ScanIssue `json:"issues,omitempty"`
}

type job struct {
	path  string
	depth int
}

type outcome struct {
	record *storage.FileRecord
	issue  *storage.ScanIssue
}

// New builds a scanner. Zero workers or batch size fall back to
// sensible defaults.
func New(db *storage.DB, logger *slog.Logger, workers, batchSize int) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Scanner{db: db, logger: logger, workers: workers, batchSize: batchSize}
}

// NewSessionID produces a timestamp-ordered unique session identifier.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("scan_%d_%s", now.Unix(), uuid.NewString()[:8])
}

// Analyze scans root and records every regular file and symlink under
// it. An empty sessionID lets the scanner mint one. The session row is
// created up front in running state and always moved to completed or
// failed before Analyze returns.
func (s *Scanner) Analyze(ctx context.Context, root, sessionID string, cfg config.ScanConfig) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fserr.New(fserr.ScanFailed, fmt.Sprintf("resolving root path %q", root), err)
	}
	fi, err := os.Stat(absRoot)
	if err != nil {
		return nil, fserr.New(fserr.ScanFailed, fmt.Sprintf("root path %q is not accessible", absRoot), err)
	}
	if !fi.IsDir() {
		return nil, fserr.New(fserr.ScanFailed, fmt.Sprintf("root path %q is not a directory", absRoot), nil)
	}

	start := time.Now()
	if sessionID == "" {
		sessionID = NewSessionID(start)
	}

	cfgBlob, err := json.Marshal(cfg)
	if err != nil {
		return nil, fserr.New(fserr.ScanFailed, "serializing scan configuration", err)
	}

	session := &storage.ScanSession{
		SessionID: sessionID,
		RootPath:  absRoot,
		StartTime: start,
		Config:    string(cfgBlob),
		Status:    storage.StatusRunning,
	}
	if err := s.db.BeginSession(session); err != nil {
		return nil, err
	}

	s.logger.Info("scan started",
		"session_id", sessionID,
		"root", absRoot,
		"workers", s.workers)

	indexed, issues, scanErr := s.run(ctx, absRoot, sessionID, cfg)

	end := time.Now()
	status := storage.StatusCompleted
	if scanErr != nil {
		status = storage.StatusFailed
		issues = append(issues, storage.ScanIssue{Path: absRoot, Error: scanErr.Error()})
	}
	errorsJSON := ""
	if len(issues) > 0 {
		if blob, err := json.Marshal(issues); err == nil {
			errorsJSON = string(blob)
		}
	}
	if err := s.db.FinishSession(sessionID, end, status, errorsJSON); err != nil {
		return nil, err
	}

	if scanErr != nil {
		s.logger.Error("scan failed", "session_id", sessionID, "error", scanErr)
		return nil, fserr.New(fserr.ScanFailed, "scan aborted", scanErr)
	}

	s.logger.Info("scan completed",
		"session_id", sessionID,
		"files", indexed,
		"issues", len(issues),
		"duration", end.Sub(start))

	return &Result{
		SessionID:    sessionID,
		RootPath:     absRoot,
		FilesIndexed: indexed,
		Duration:     end.Sub(start),
		Issues:       issues,
	}, nil
}

// run drives the walk/extract/insert pipeline and returns the number of
// records stored plus the per-file issues encountered.
func (s *Scanner) run(ctx context.Context, root, sessionID string, cfg config.ScanConfig) (int, []storage.ScanIssue, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, s.workers*2)
	outcomes := make(chan outcome, s.workers*2)
	walkIssues := make(chan storage.ScanIssue, 16)

	// Walker feeds paths; closing jobs drains the pool.
	go func() {
		defer close(jobs)
		defer close(walkIssues)
		s.walk(ctx, root, 0, cfg, jobs, walkIssues)
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := extract.Extract(j.path, sessionID, j.depth, cfg)
				switch {
				case err != nil:
					outcomes <- outcome{issue: &storage.ScanIssue{Path: j.path, Error: err.Error()}}
				case rec != nil:
					outcomes <- outcome{record: rec}
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var (
		issues  []storage.ScanIssue
		batch   = make([]*storage.FileRecord, 0, s.batchSize)
		indexed int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.db.InsertFiles(batch); err != nil {
			return err
		}
		indexed += len(batch)
		batch = batch[:0]
		return nil
	}
	// Aborting mid-pipeline must not strand the walker or the workers:
	// cancel stops the walker, draining unblocks workers parked on the
	// outcomes send so the pool can wind down.
	abort := func() {
		cancel()
		for outcomes != nil || walkIssues != nil {
			select {
			case _, ok := <-outcomes:
				if !ok {
					outcomes = nil
				}
			case _, ok := <-walkIssues:
				if !ok {
					walkIssues = nil
				}
			}
		}
	}

	for outcomes != nil || walkIssues != nil {
		select {
		case o, ok := <-outcomes:
			if !ok {
				outcomes = nil
				continue
			}
			if o.issue != nil {
				issues = append(issues, *o.issue)
				continue
			}
			batch = append(batch, o.record)
			if len(batch) >= s.batchSize {
				if err := flush(); err != nil {
					abort()
					return indexed, issues, err
				}
			}
		case is, ok := <-walkIssues:
			if !ok {
				walkIssues = nil
				continue
			}
			issues = append(issues, is)
		}
	}
	if err := flush(); err != nil {
		return indexed, issues, err
	}
	if err := ctx.Err(); err != nil {
		return indexed, issues, err
	}
	return indexed, issues, nil
}

// walk descends breadth-first from dir. The scan root sits at depth 0
// and files are recorded one level below their containing directory, so
// a file directly under the root stores depth 1. Descent into a
// subdirectory stops once its depth would exceed cfg.MaxDepth. Symlinks
// are enqueued as files and never followed.
func (s *Scanner) walk(ctx context.Context, dir string, depth int, cfg config.ScanConfig, jobs chan<- job, issues chan<- storage.ScanIssue) {
	if ctx.Err() != nil {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		issues <- storage.ScanIssue{Path: dir, Error: err.Error()}
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		name := entry.Name()
		if !cfg.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if depth+1 > cfg.MaxDepth {
				continue
			}
			s.walk(ctx, path, depth+1, cfg, jobs, issues)
			continue
		}
		jobs <- job{path: path, depth: depth + 1}
	}
}
