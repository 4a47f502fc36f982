// Package trello is a minimal client for the Trello REST API, covering
// just the read surface the sync pipeline needs: boards, lists, cards
// and card comments.
package trello

import (
	"errors"
	"fmt"
)

// ErrBoardNotFound is returned by FindBoard when no board matches the
// given reference.
var ErrBoardNotFound = errors.New("board not found")

// APIError is returned for non-2xx responses from the Trello API.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}
