package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Marker records the last synchronized board. It lives in a small JSON
// state file outside the relational store, is read once at run start and
// rewritten only when a different board is selected.
type Marker struct {
	BoardID   string    `json:"board_id"`
	BoardName string    `json:"board_name,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
}

// NeedsResync reports whether selecting boardID requires a full resync.
// A pure function of the previous marker and the requested board, so the
// decision is testable without filesystem I/O.
func (m Marker) NeedsResync(boardID string) bool {
	return m.BoardID != boardID
}

// ReadMarker loads the marker file. A missing file yields the zero
// Marker, which forces a full resync on first use.
func ReadMarker(path string) (Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Marker{}, nil
		}
		return Marker{}, fmt.Errorf("failed to read marker file %s: %w", path, err)
	}

	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("failed to parse marker file %s: %w", path, err)
	}
	return m, nil
}

// WriteMarker persists the marker to path, creating parent directories
// as needed.
func WriteMarker(path string, m Marker) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal marker: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write marker file %s: %w", path, err)
	}
	return nil
}
