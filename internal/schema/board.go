// Package schema provides the data structures shared by the board client,
// the store, and the sync pipeline.
package schema

import "fmt"

// Board is a top-level container of lists in the remote service.
// Boards are never persisted; the ID is used to scope rows and to
// detect a board change between runs.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a named grouping of cards within a board.
type List struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BoardID string `json:"board_id"`
}

// Validate checks if the List has valid field values.
func (l *List) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("list id is required")
	}
	if l.BoardID == "" {
		return fmt.Errorf("list board_id is required")
	}
	return nil
}

// Card is a unit of work with a name, a free-text description and comments.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ListID      string `json:"list_id"`
	BoardID     string `json:"board_id"`
}

// Validate checks if the Card has valid field values.
func (c *Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card id is required")
	}
	if c.ListID == "" {
		return fmt.Errorf("card list_id is required")
	}
	if c.BoardID == "" {
		return fmt.Errorf("card board_id is required")
	}
	return nil
}

// Comment is a free-text annotation attached to a card.
type Comment struct {
	ID     string `json:"id"`
	CardID string `json:"card_id"`
	Text   string `json:"text"`
}

// Validate checks if the Comment has valid field values.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("comment id is required")
	}
	if c.CardID == "" {
		return fmt.Errorf("comment card_id is required")
	}
	return nil
}
