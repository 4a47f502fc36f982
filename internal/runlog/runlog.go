// Package runlog provides the per-run failure log: an append-only file
// that receives one line per recoverable failure and is truncated at the
// start of each sync run.
package runlog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Log is a run-scoped failure log backed by a file.
type Log struct {
	*log.Logger
	file *os.File
}

// Open truncates (or creates) the log file at path and returns a Log
// writing to it. The caller MUST call Close() at the end of the run.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	return &Log{
		Logger: log.New(file, "", log.LstdFlags),
		file:   file,
	}, nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
