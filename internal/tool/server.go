package tool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// MaxMessageSize bounds one request line. Large parameter lists fit
// comfortably; anything bigger is a caller bug.
const MaxMessageSize = 1024 * 1024

// Server runs the facade over a line-delimited JSON transport: one
// request object per line in, one response object per line out.
type Server struct {
	facade  *Facade
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
}

func NewServer(facade *Facade, stdin io.Reader, stdout io.Writer, logger *slog.Logger) *Server {
	return &Server{facade: facade, stdin: stdin, stdout: stdout, logger: logger}
}

// Serve processes requests until EOF or context cancellation. A
// malformed line produces an error response and the loop continues.
func (s *Server) Serve(ctx context.Context) error {
	s.scanner = bufio.NewScanner(s.stdin)
	s.scanner.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)

	for s.scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		response := s.facade.Handle(ctx, line)
		if _, err := fmt.Fprintf(s.stdout, "%s\n", response); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	s.logger.Info("tool server shutting down")
	return nil
}
