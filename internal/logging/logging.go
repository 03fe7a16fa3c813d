// Package logging configures the process-wide slog logger: console output on
// stderr plus a per-run session log file under the export directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Session holds the per-run log file so callers can close it on exit.
type Session struct {
	Logger *slog.Logger
	Path   string

	file *os.File
}

// NewSession builds a logger writing to stderr and to
// <exportDir>/logs/<name>_<timestamp>.log. When the log file cannot be
// created the logger still works, console-only.
func NewSession(exportDir, name string, verbose bool) *Session {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	s := &Session{}

	out := io.Writer(os.Stderr)
	logDir := filepath.Join(exportDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err == nil {
		path := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", name, time.Now().Format("20060102_150405")))
		if f, err := os.Create(path); err == nil {
			s.file = f
			s.Path = path
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	s.Logger = slog.New(slog.NewTextHandler(out, opts))
	return s
}

func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
