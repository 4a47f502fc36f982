package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ksutton/cardsift/internal/schema"
)

// ContactExists reports whether a contact row for the same card already
// matches the candidate. A row matches when it has the same name and
// location and shares at least one populated phone category — a looser
// check than full-tuple equality, so the same person reported with an
// extra number is still treated as a duplicate.
func (s *Store) ContactExists(ctx context.Context, candidate *schema.Contact) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `
	SELECT COUNT(*)
	FROM contacts
	WHERE card_id = ?
	  AND name = ?
	  AND location = ?
	  AND (
	       (mobile IS NOT NULL AND mobile = ?)
	    OR (landline IS NOT NULL AND landline = ?)
	    OR (business IS NOT NULL AND business = ?)
	  )
	`,
		candidate.CardID,
		candidate.Name,
		candidate.Location,
		phoneToNull(candidate.Phones.Mobile),
		phoneToNull(candidate.Phones.Landline),
		phoneToNull(candidate.Phones.Business),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check contact for card %s: %w", candidate.CardID, err)
	}
	return count > 0, nil
}

// InsertContacts commits a batch of contacts for one card atomically.
// Any failure rolls back the whole batch. On success each contact's ID
// is set to its store-assigned row ID.
func (s *Store) InsertContacts(ctx context.Context, contacts []*schema.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range contacts {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (card_id, name, location, mobile, landline, business)
		VALUES (?, ?, ?, ?, ?, ?)
		`,
			c.CardID,
			c.Name,
			c.Location,
			phoneToNull(c.Phones.Mobile),
			phoneToNull(c.Phones.Landline),
			phoneToNull(c.Phones.Business),
		)
		if err != nil {
			return fmt.Errorf("failed to insert contact %q for card %s: %w", c.Name, c.CardID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read contact row id: %w", err)
		}
		c.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contact batch: %w", err)
	}
	return nil
}

// ContactsByCard returns all stored contacts for the given card.
func (s *Store) ContactsByCard(ctx context.Context, cardID string) ([]*schema.Contact, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT id, card_id, name, location, mobile, landline, business
	FROM contacts
	WHERE card_id = ?
	ORDER BY id ASC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var contacts []*schema.Contact
	for rows.Next() {
		var c schema.Contact
		var mobile, landline, business sql.NullString
		if err := rows.Scan(&c.ID, &c.CardID, &c.Name, &c.Location, &mobile, &landline, &business); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.Phones.Mobile = nullToPhone(mobile)
		c.Phones.Landline = nullToPhone(landline)
		c.Phones.Business = nullToPhone(business)
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// phoneToNull converts a phone field to a nullable string for SQL.
// Absent phones are stored as NULL, never as empty strings.
func phoneToNull(p schema.Phone) sql.NullString {
	if !p.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: p.Number, Valid: true}
}

// nullToPhone converts a nullable SQL string back to a phone field.
func nullToPhone(ns sql.NullString) schema.Phone {
	if !ns.Valid {
		return schema.Phone{}
	}
	return schema.Phone{Number: ns.String, Valid: true}
}
