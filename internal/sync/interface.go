package sync

import (
	"context"
	"time"

	"github.com/ksutton/cardsift/internal/extract"
	"github.com/ksutton/cardsift/internal/schema"
)

// BoardSource is the read surface of the remote board service the syncer
// depends on. *trello.Client satisfies it; tests use fakes.
type BoardSource interface {
	// FindBoard resolves a user-supplied name or ID to a concrete board.
	FindBoard(ctx context.Context, ref string) (*schema.Board, error)

	// Lists returns the lists on a board. Order is not guaranteed
	// stable across calls and is only used for progress reporting.
	Lists(ctx context.Context, boardID string) ([]*schema.List, error)

	// Cards returns all cards on a board.
	Cards(ctx context.Context, boardID string) ([]*schema.Card, error)

	// Comments returns the comments on a card.
	Comments(ctx context.Context, cardID string) ([]*schema.Comment, error)
}

// Extractor runs one extraction call over a single text unit.
// *extract.Client satisfies it; tests use fakes.
type Extractor interface {
	Extract(ctx context.Context, text string) (*extract.Result, error)
}

// Report summarizes one synchronization run.
type Report struct {
	Board      *schema.Board
	FullResync bool

	ListsInserted    int
	CardsInserted    int
	CommentsInserted int

	TextUnits          int
	ContactsCommitted  int
	Duplicates         int
	Rejected           int
	ParseFailures      int
	ExtractionFailures int
	CardFailures       int
	CommitFailures     int
	StoreFailures      int

	Elapsed time.Duration
}
