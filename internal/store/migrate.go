package store

import (
	"context"
	"database/sql"
	"fmt"
)

// A migration moves the schema from version-1 to version. Each migration
// runs in its own transaction together with the version bump, so a failed
// migration leaves the recorded version untouched.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{1, "initial schema", migrateInitial},
	{2, "typed phone columns", migrateTypedPhones},
}

// Migrate brings the database up to the latest schema version.
// Safe to call on every open; already-applied migrations are skipped.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 for a
// fresh database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := m.apply(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version, m.name); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}

	return tx.Commit()
}

// migrateInitial creates the four entity tables. Contacts start with a
// single generic phone column; migration 2 splits it into typed columns.
func migrateInitial(ctx context.Context, tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		board_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		list_id TEXT NOT NULL,
		board_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		card_id TEXT NOT NULL,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		phone TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_lists_board ON lists(board_id);
	CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id);
	CREATE INDEX IF NOT EXISTS idx_cards_board ON cards(board_id);
	CREATE INDEX IF NOT EXISTS idx_comments_card ON comments(card_id);
	CREATE INDEX IF NOT EXISTS idx_contacts_card ON contacts(card_id);
	`

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// migrateTypedPhones rebuilds the contacts table with one column per phone
// category. Legacy generic phone values are carried over as mobile numbers,
// which is what the old extraction prompt asked for in practice.
func migrateTypedPhones(ctx context.Context, tx *sql.Tx) error {
	steps := []string{
		`CREATE TABLE contacts_v2 (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			card_id TEXT NOT NULL,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			mobile TEXT,
			landline TEXT,
			business TEXT
		)`,
		`INSERT INTO contacts_v2 (id, card_id, name, location, mobile)
		 SELECT id, card_id, name, location, phone FROM contacts`,
		`DROP TABLE contacts`,
		`ALTER TABLE contacts_v2 RENAME TO contacts`,
		`CREATE INDEX idx_contacts_card ON contacts(card_id)`,
		// Legacy rows may contain duplicate tuples; keep the oldest of
		// each so the unique index below can be created.
		`DELETE FROM contacts WHERE id NOT IN (
			SELECT MIN(id) FROM contacts
			GROUP BY card_id, name, location,
			         COALESCE(mobile, ''), COALESCE(landline, ''), COALESCE(business, ''))`,
		// COALESCE folds absent phones to '' so NULLs don't defeat the
		// uniqueness of the (card, name, location, phone-set) tuple.
		`CREATE UNIQUE INDEX idx_contacts_identity
		 ON contacts(card_id, name, location,
		             COALESCE(mobile, ''), COALESCE(landline, ''), COALESCE(business, ''))`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rebuild contacts: %w", err)
		}
	}
	return nil
}
