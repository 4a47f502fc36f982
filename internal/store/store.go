// Package store provides the embedded SQLite database that holds the
// synchronized board hierarchy (lists, cards, comments) and the contacts
// extracted from card text.
//
// The database runs in embedded mode using the ncruces/go-sqlite3 driver
// with WAL enabled. Structural rows are written with insert-if-absent
// semantics so re-running a sync against an unchanged board is a no-op;
// contact rows are only ever written inside a per-card transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ksutton/cardsift/internal/schema"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the SQLite connection with sync-specific functionality.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates a new database connection at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// If the database doesn't exist, it is created and migrated to the
// current schema version.
//
// The caller MUST call Close() when done to ensure proper cleanup.
func Open(path string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas ride the connection string so every pooled connection
	// gets them, not just the one that happens to serve an Exec.
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		conn: conn,
		path: path,
	}

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// RawDB returns the underlying sql.DB connection.
func (s *Store) RawDB() *sql.DB {
	return s.conn
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.conn = nil
	return nil
}

// InsertListIfAbsent inserts a list row unless one with the same ID already
// exists. Returns true if a row was inserted. Existing rows are never
// updated in place.
func (s *Store) InsertListIfAbsent(ctx context.Context, list *schema.List) (bool, error) {
	if err := list.Validate(); err != nil {
		return false, fmt.Errorf("invalid list: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, `
	INSERT INTO lists (id, name, board_id)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`, list.ID, list.Name, list.BoardID)
	if err != nil {
		return false, fmt.Errorf("failed to insert list %s: %w", list.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// InsertCardIfAbsent inserts a card row unless one with the same ID already
// exists. Returns true if a row was inserted.
func (s *Store) InsertCardIfAbsent(ctx context.Context, card *schema.Card) (bool, error) {
	if err := card.Validate(); err != nil {
		return false, fmt.Errorf("invalid card: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, `
	INSERT INTO cards (id, name, description, list_id, board_id)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`, card.ID, card.Name, card.Description, card.ListID, card.BoardID)
	if err != nil {
		return false, fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// InsertCommentIfAbsent inserts a comment row unless one with the same ID
// already exists. Returns true if a row was inserted.
func (s *Store) InsertCommentIfAbsent(ctx context.Context, comment *schema.Comment) (bool, error) {
	if err := comment.Validate(); err != nil {
		return false, fmt.Errorf("invalid comment: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, `
	INSERT INTO comments (id, card_id, text)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`, comment.ID, comment.CardID, comment.Text)
	if err != nil {
		return false, fmt.Errorf("failed to insert comment %s: %w", comment.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// CommentsByCard returns all stored comments for the given card,
// ordered by ID for stable iteration.
func (s *Store) CommentsByCard(ctx context.Context, cardID string) ([]*schema.Comment, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT id, card_id, text
	FROM comments
	WHERE card_id = ?
	ORDER BY id ASC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var comments []*schema.Comment
	for rows.Next() {
		var c schema.Comment
		if err := rows.Scan(&c.ID, &c.CardID, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

// TruncateAll clears all four tables in one transaction. This runs when a
// different board is selected and the store must be rebuilt from scratch.
func (s *Store) TruncateAll(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"contacts", "comments", "cards", "lists"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit truncate: %w", err)
	}
	return nil
}

// Counts holds per-table row counts for status reporting.
type Counts struct {
	Lists    int
	Cards    int
	Comments int
	Contacts int
}

// RowCounts returns the number of rows in each table.
func (s *Store) RowCounts(ctx context.Context) (*Counts, error) {
	var c Counts
	for table, dst := range map[string]*int{
		"lists":    &c.Lists,
		"cards":    &c.Cards,
		"comments": &c.Comments,
		"contacts": &c.Contacts,
	} {
		err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(dst)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return &c, nil
}

// ListRowCountByBoard returns how many list rows belong to the given board.
func (s *Store) ListRowCountByBoard(ctx context.Context, boardID string) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lists WHERE board_id = ?", boardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lists for board %s: %w", boardID, err)
	}
	return count, nil
}
