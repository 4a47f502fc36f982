package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ksutton/cardsift/internal/schema"
)

// setupTestStore creates a temporary database for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func testContact(cardID, name, location, mobile string) *schema.Contact {
	return &schema.Contact{
		CardID:   cardID,
		Name:     name,
		Location: location,
		Phones: schema.Phones{
			Mobile: schema.NormalizePhone(mobile),
		},
	}
}

func TestInsertListIfAbsent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	list := &schema.List{ID: "l1", Name: "Backlog", BoardID: "b1"}

	inserted, err := st.InsertListIfAbsent(ctx, list)
	if err != nil {
		t.Fatalf("InsertListIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Error("expected first insert to report inserted")
	}

	// Second insert with the same ID is a no-op.
	inserted, err = st.InsertListIfAbsent(ctx, list)
	if err != nil {
		t.Fatalf("second InsertListIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("expected second insert to be a no-op")
	}

	counts, err := st.RowCounts(ctx)
	if err != nil {
		t.Fatalf("RowCounts failed: %v", err)
	}
	if counts.Lists != 1 {
		t.Errorf("expected 1 list row, got %d", counts.Lists)
	}
}

func TestInsertCardAndCommentIfAbsent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	card := &schema.Card{ID: "c1", Name: "Call Jane", ListID: "l1", BoardID: "b1"}
	for i := 0; i < 2; i++ {
		if _, err := st.InsertCardIfAbsent(ctx, card); err != nil {
			t.Fatalf("InsertCardIfAbsent failed: %v", err)
		}
	}

	comment := &schema.Comment{ID: "m1", CardID: "c1", Text: "her number is +61400000000"}
	for i := 0; i < 2; i++ {
		if _, err := st.InsertCommentIfAbsent(ctx, comment); err != nil {
			t.Fatalf("InsertCommentIfAbsent failed: %v", err)
		}
	}

	counts, err := st.RowCounts(ctx)
	if err != nil {
		t.Fatalf("RowCounts failed: %v", err)
	}
	if counts.Cards != 1 || counts.Comments != 1 {
		t.Errorf("expected 1 card and 1 comment, got %d and %d", counts.Cards, counts.Comments)
	}

	comments, err := st.CommentsByCard(ctx, "c1")
	if err != nil {
		t.Fatalf("CommentsByCard failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != comment.Text {
		t.Errorf("unexpected comments: %+v", comments)
	}
}

func TestTruncateAll(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	if _, err := st.InsertListIfAbsent(ctx, &schema.List{ID: "l1", Name: "L", BoardID: "b1"}); err != nil {
		t.Fatalf("insert list: %v", err)
	}
	if _, err := st.InsertCardIfAbsent(ctx, &schema.Card{ID: "c1", Name: "C", ListID: "l1", BoardID: "b1"}); err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if _, err := st.InsertCommentIfAbsent(ctx, &schema.Comment{ID: "m1", CardID: "c1", Text: "t"}); err != nil {
		t.Fatalf("insert comment: %v", err)
	}
	if err := st.InsertContacts(ctx, []*schema.Contact{testContact("c1", "Jane", "Sydney", "+61400000000")}); err != nil {
		t.Fatalf("insert contacts: %v", err)
	}

	if err := st.TruncateAll(ctx); err != nil {
		t.Fatalf("TruncateAll failed: %v", err)
	}

	counts, err := st.RowCounts(ctx)
	if err != nil {
		t.Fatalf("RowCounts failed: %v", err)
	}
	if counts.Lists+counts.Cards+counts.Comments+counts.Contacts != 0 {
		t.Errorf("expected empty store after truncate, got %+v", counts)
	}
}

func TestInsertContactsAssignsIDs(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	contacts := []*schema.Contact{
		testContact("c1", "Jane", "Sydney", "+61400000000"),
		testContact("c1", "Bob", "Melbourne", "+61411111111"),
	}
	if err := st.InsertContacts(ctx, contacts); err != nil {
		t.Fatalf("InsertContacts failed: %v", err)
	}

	if contacts[0].ID == 0 || contacts[1].ID == 0 {
		t.Errorf("expected store-assigned IDs, got %d and %d", contacts[0].ID, contacts[1].ID)
	}
	if contacts[1].ID <= contacts[0].ID {
		t.Errorf("expected monotonic IDs, got %d then %d", contacts[0].ID, contacts[1].ID)
	}
}

func TestInsertContactsRollsBackAtomically(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	// The third candidate violates the contact identity index
	// mid-batch; the entire batch must roll back.
	contacts := []*schema.Contact{
		testContact("c1", "Jane", "Sydney", "+61400000000"),
		testContact("c1", "Bob", "Melbourne", "+61411111111"),
		testContact("c1", "Jane", "Sydney", "+61400000000"),
	}
	if err := st.InsertContacts(ctx, contacts); err == nil {
		t.Fatal("expected batch insert to fail")
	}

	counts, err := st.RowCounts(ctx)
	if err != nil {
		t.Fatalf("RowCounts failed: %v", err)
	}
	if counts.Contacts != 0 {
		t.Errorf("expected 0 contacts after rollback, got %d", counts.Contacts)
	}
}

func TestContactExists(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	stored := testContact("c1", "Jane", "Sydney", "+61400000000")
	if err := st.InsertContacts(ctx, []*schema.Contact{stored}); err != nil {
		t.Fatalf("InsertContacts failed: %v", err)
	}

	tests := []struct {
		name      string
		candidate *schema.Contact
		want      bool
	}{
		{"exact match", testContact("c1", "Jane", "Sydney", "+61400000000"), true},
		{"different card", testContact("c2", "Jane", "Sydney", "+61400000000"), false},
		{"different name", testContact("c1", "Janet", "Sydney", "+61400000000"), false},
		{"different location", testContact("c1", "Jane", "Perth", "+61400000000"), false},
		{"different number", testContact("c1", "Jane", "Sydney", "+61499999999"), false},
		{
			// Same mobile plus an extra landline still matches: any
			// shared category is enough.
			"extra category",
			&schema.Contact{
				CardID: "c1", Name: "Jane", Location: "Sydney",
				Phones: schema.Phones{
					Mobile:   schema.NormalizePhone("+61400000000"),
					Landline: schema.NormalizePhone("+61298765432"),
				},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ContactExists(ctx, tt.candidate)
			if err != nil {
				t.Fatalf("ContactExists failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContactExists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAbsentPhonesDoNotMatchStoredAbsent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	// Stored contact has only a landline; candidate has only a mobile.
	// Their absent categories are NULL and must not match each other.
	stored := &schema.Contact{
		CardID: "c1", Name: "Jane", Location: "Sydney",
		Phones: schema.Phones{Landline: schema.NormalizePhone("+61298765432")},
	}
	if err := st.InsertContacts(ctx, []*schema.Contact{stored}); err != nil {
		t.Fatalf("InsertContacts failed: %v", err)
	}

	candidate := testContact("c1", "Jane", "Sydney", "+61400000000")
	exists, err := st.ContactExists(ctx, candidate)
	if err != nil {
		t.Fatalf("ContactExists failed: %v", err)
	}
	if exists {
		t.Error("absent phone categories must not be treated as matching")
	}
}

func TestContactsByCardRoundTrip(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	in := &schema.Contact{
		CardID: "c1", Name: "Jane", Location: "Sydney",
		Phones: schema.Phones{
			Mobile:   schema.NormalizePhone("+61400000000"),
			Business: schema.NormalizePhone("+61288888888"),
		},
	}
	if err := st.InsertContacts(ctx, []*schema.Contact{in}); err != nil {
		t.Fatalf("InsertContacts failed: %v", err)
	}

	out, err := st.ContactsByCard(ctx, "c1")
	if err != nil {
		t.Fatalf("ContactsByCard failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(out))
	}
	got := out[0]
	if got.Name != in.Name || got.Location != in.Location {
		t.Errorf("unexpected contact: %+v", got)
	}
	if !got.Phones.Mobile.Valid || got.Phones.Mobile.Number != "+61400000000" {
		t.Errorf("unexpected mobile: %+v", got.Phones.Mobile)
	}
	if got.Phones.Landline.Valid {
		t.Errorf("expected absent landline, got %+v", got.Phones.Landline)
	}
	if !got.Phones.Business.Valid || got.Phones.Business.Number != "+61288888888" {
		t.Errorf("unexpected business: %+v", got.Phones.Business)
	}
}

func TestOpenAppliesPragmasOnEveryConnection(t *testing.T) {
	st := setupTestStore(t)

	// Pragmas are carried in the connection string, so whichever pooled
	// connection serves these queries must report them.
	var fk int
	if err := st.RawDB().QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	var mode string
	if err := st.RawDB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode failed: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}

	var timeout int
	if err := st.RawDB().QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout failed: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout=5000, got %d", timeout)
	}
}
