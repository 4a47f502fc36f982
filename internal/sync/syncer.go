package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ksutton/cardsift/internal/schema"
	"github.com/ksutton/cardsift/internal/store"
)

// Config holds configuration for the Syncer.
type Config struct {
	// MarkerPath is the location of the last-synced-board state file.
	MarkerPath string

	// Logger receives one line per recoverable failure (card failures,
	// parse failures, rejections, duplicate drops, rollbacks).
	// Informational progress lines go to the standard logger instead.
	Logger *log.Logger
}

// Syncer drives one synchronization run: structural sync of the board
// hierarchy followed by per-card contact extraction.
//
// Processing is single-threaded and blocking: lists, cards and text
// units are handled strictly one at a time, so a card's structural row
// and comments are always persisted before extraction runs over its text.
type Syncer struct {
	store      *store.Store
	source     BoardSource
	extractor  Extractor
	markerPath string
	logger     *log.Logger
}

// New creates a Syncer. The store must already be open and migrated.
// If cfg.Logger is nil, a default logger writing to stderr is used.
func New(st *store.Store, source BoardSource, extractor Extractor, cfg *Config) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Syncer{
		store:      st,
		source:     source,
		extractor:  extractor,
		markerPath: cfg.MarkerPath,
		logger:     logger,
	}
}

// Synchronize resolves ref to a board and syncs it.
//
// If the resolved board matches the durable marker the run is
// incremental: existing rows are preserved and only missing rows are
// inserted. Otherwise all four tables are truncated, the marker is
// rewritten, and the sync proceeds against the empty store.
//
// An error is returned only for board resolution or hierarchy-walk
// failures; everything below the card level is recovered, logged and
// counted in the Report.
func (s *Syncer) Synchronize(ctx context.Context, ref string) (*Report, error) {
	start := time.Now()

	board, err := s.source.FindBoard(ctx, ref)
	if err != nil {
		s.logger.Printf("ERROR: board resolution failed for %q: %v", ref, err)
		return nil, fmt.Errorf("failed to resolve board %q: %w", ref, err)
	}
	log.Printf("Starting sync of board %q (%s)", board.Name, board.ID)

	marker, err := ReadMarker(s.markerPath)
	if err != nil {
		return nil, err
	}

	report := &Report{Board: board}

	if marker.NeedsResync(board.ID) {
		report.FullResync = true
		log.Printf("Board changed (%q -> %q), performing full resync", marker.BoardID, board.ID)
		if err := s.store.TruncateAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to truncate store: %w", err)
		}
		if err := WriteMarker(s.markerPath, Marker{
			BoardID:   board.ID,
			BoardName: board.Name,
			SyncedAt:  time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}

	lists, err := s.source.Lists(ctx, board.ID)
	if err != nil {
		s.logger.Printf("ERROR: failed to fetch lists for board %s: %v", board.ID, err)
		return nil, fmt.Errorf("failed to fetch lists for board %s: %w", board.ID, err)
	}

	cards, err := s.source.Cards(ctx, board.ID)
	if err != nil {
		s.logger.Printf("ERROR: failed to fetch cards for board %s: %v", board.ID, err)
		return nil, fmt.Errorf("failed to fetch cards for board %s: %w", board.ID, err)
	}

	cardsByList := make(map[string][]*schema.Card)
	for _, card := range cards {
		cardsByList[card.ListID] = append(cardsByList[card.ListID], card)
	}

	for _, list := range lists {
		inserted, err := s.store.InsertListIfAbsent(ctx, list)
		if err != nil {
			skipped := len(cardsByList[list.ID])
			s.logger.Printf("WARNING: failed to insert list board=%s list=%s, skipping %d cards: %v",
				board.ID, list.ID, skipped, err)
			report.CardFailures += skipped
			continue
		}
		if inserted {
			report.ListsInserted++
		}

		for _, card := range cardsByList[list.ID] {
			if err := s.syncCard(ctx, board, list, card, report); err != nil {
				s.logger.Printf("WARNING: card failed board=%s list=%s card=%s: %v",
					board.ID, list.ID, card.ID, err)
				report.CardFailures++
			}
		}
	}

	report.Elapsed = time.Since(start)
	log.Printf("Sync complete board=%s lists=%d cards=%d comments=%d contacts=%d elapsed=%v",
		board.ID, report.ListsInserted, report.CardsInserted, report.CommentsInserted,
		report.ContactsCommitted, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// syncCard persists one card and its comments, then runs extraction over
// the card's text units and commits accepted contacts as one batch.
// An error aborts only this card; the run continues with the next one.
func (s *Syncer) syncCard(ctx context.Context, board *schema.Board, list *schema.List, card *schema.Card, report *Report) error {
	inserted, err := s.store.InsertCardIfAbsent(ctx, card)
	if err != nil {
		return fmt.Errorf("failed to persist card: %w", err)
	}
	if inserted {
		report.CardsInserted++
	}

	comments, err := s.source.Comments(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}
	for _, comment := range comments {
		inserted, err := s.store.InsertCommentIfAbsent(ctx, comment)
		if err != nil {
			return fmt.Errorf("failed to persist comment %s: %w", comment.ID, err)
		}
		if inserted {
			report.CommentsInserted++
		}
	}

	batch := s.extractCard(ctx, board, list, card, report)
	if len(batch) == 0 {
		return nil
	}

	if err := s.store.InsertContacts(ctx, batch); err != nil {
		// The whole batch is rolled back; the card's contacts are lost
		// for this run and re-extraction on a future run recovers them.
		s.logger.Printf("WARNING: contact batch rolled back board=%s list=%s card=%s: %v",
			board.ID, list.ID, card.ID, err)
		report.CommitFailures++
		return nil
	}
	report.ContactsCommitted += len(batch)
	return nil
}

// extractCard runs extraction over every text unit of the card and
// returns the candidates that survived validation and deduplication.
// A failure on one unit never aborts the remaining units.
func (s *Syncer) extractCard(ctx context.Context, board *schema.Board, list *schema.List, card *schema.Card, report *Report) []*schema.Contact {
	var batch []*schema.Contact

	for _, unit := range s.textUnits(ctx, card) {
		report.TextUnits++

		result, err := s.extractor.Extract(ctx, unit)
		if err != nil {
			// Transient failures are not retried; the unit is treated
			// as containing no contact.
			s.logger.Printf("WARNING: extraction failed board=%s list=%s card=%s: %v",
				board.ID, list.ID, card.ID, err)
			report.ExtractionFailures++
			continue
		}
		if !result.Parsed() {
			if result.Raw != "" {
				s.logger.Printf("WARNING: unparsable extraction response card=%s: %q",
					card.ID, result.Raw)
				report.ParseFailures++
			}
			continue
		}

		contact, err := schema.ValidateContact(card.ID, *result.Fields)
		if err != nil {
			s.logger.Printf("Rejected contact card=%s: %v", card.ID, err)
			report.Rejected++
			continue
		}

		dup, err := s.isDuplicate(ctx, contact, batch)
		if err != nil {
			s.logger.Printf("WARNING: duplicate check failed card=%s: %v", card.ID, err)
			report.StoreFailures++
			continue
		}
		if dup {
			s.logger.Printf("Skipped duplicate contact card=%s name=%q location=%q",
				card.ID, contact.Name, contact.Location)
			report.Duplicates++
			continue
		}

		batch = append(batch, contact)
	}

	return batch
}

// textUnits gathers the card's extractable text: name, description, and
// the stored comments for the card. Blank units are dropped.
func (s *Syncer) textUnits(ctx context.Context, card *schema.Card) []string {
	units := []string{card.Name, card.Description}

	comments, err := s.store.CommentsByCard(ctx, card.ID)
	if err != nil {
		s.logger.Printf("WARNING: failed to load comments for card %s: %v", card.ID, err)
	}
	for _, c := range comments {
		units = append(units, c.Text)
	}

	out := units[:0]
	for _, u := range units {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	return out
}

// isDuplicate checks the candidate against already-persisted contacts for
// the card, and against the current run's uncommitted batch so two units
// on one card reporting the same person yield a single row.
func (s *Syncer) isDuplicate(ctx context.Context, candidate *schema.Contact, batch []*schema.Contact) (bool, error) {
	exists, err := s.store.ContactExists(ctx, candidate)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	for _, c := range batch {
		if c.Name == candidate.Name && c.Location == candidate.Location &&
			c.Phones.AnyMatch(candidate.Phones) {
			return true, nil
		}
	}
	return false, nil
}
