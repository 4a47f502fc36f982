// Package sync implements the synchronization-and-extraction pipeline.
//
// # Overview
//
// The syncer pulls a board hierarchy from the remote board service into
// the local SQLite store, then runs contact extraction over each card's
// text units and commits accepted contacts per card.
//
//	Board service (remote)
//	     ├── lists                  → insert-if-absent
//	     ├── cards                  → insert-if-absent
//	     └── comments               → insert-if-absent
//	                                      ↓
//	     card text units (name, description, comments)
//	                                      ↓
//	                              Extractor (one call per unit)
//	                                      ↓
//	                  validate → deduplicate → per-card batch commit
//
// # Full resync vs incremental
//
// A durable marker records the last synchronized board. When the resolved
// board differs from the marker, all four tables are truncated and the
// marker is rewritten before syncing; otherwise the run is incremental
// and only missing rows are inserted.
//
// # Failure handling
//
// Only board resolution and hierarchy-walk failures abort a run. A single
// card's structural insert or extraction failing is logged with full
// context and skipped; parse failures, validation rejections, duplicate
// drops and batch rollbacks are logged and cost at most that unit or that
// card's contacts for the current run. Structural inserts are idempotent,
// so re-running repairs any partial state.
package sync
