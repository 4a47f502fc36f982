package trello

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient starts an httptest server with the given handler and
// returns a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClientWithBaseURL("test-key", "test-token", server.URL)
}

func boardsHandler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/members/me/boards", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" || r.URL.Query().Get("token") != "test-token" {
			http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"id": "b1", "name": "Leads"}, {"id": "b2", "name": "Archive"}]`)
	})
	return mux
}

func TestBoards(t *testing.T) {
	client := newTestClient(t, boardsHandler(t))

	boards, err := client.Boards(context.Background())
	if err != nil {
		t.Fatalf("Boards failed: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(boards))
	}
	if boards[0].ID != "b1" || boards[0].Name != "Leads" {
		t.Errorf("unexpected board: %+v", boards[0])
	}
}

func TestFindBoard(t *testing.T) {
	client := newTestClient(t, boardsHandler(t))
	ctx := context.Background()

	tests := []struct {
		ref    string
		wantID string
	}{
		{"b1", "b1"},
		{"Leads", "b1"},
		{"leads", "b1"}, // name match is case-insensitive
		{"ARCHIVE", "b2"},
	}
	for _, tt := range tests {
		board, err := client.FindBoard(ctx, tt.ref)
		if err != nil {
			t.Fatalf("FindBoard(%q) failed: %v", tt.ref, err)
		}
		if board.ID != tt.wantID {
			t.Errorf("FindBoard(%q) = %s, want %s", tt.ref, board.ID, tt.wantID)
		}
	}
}

func TestFindBoardNotFound(t *testing.T) {
	client := newTestClient(t, boardsHandler(t))

	_, err := client.FindBoard(context.Background(), "nope")
	if !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("expected ErrBoardNotFound, got %v", err)
	}
}

func TestLists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boards/b1/lists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": "l1", "name": "Inbox"}, {"id": "l2", "name": "Done"}]`)
	})
	client := newTestClient(t, mux)

	lists, err := client.Lists(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Lists failed: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	// The board ID is stamped on, since Trello omits it at this endpoint.
	if lists[0].BoardID != "b1" {
		t.Errorf("expected board ID b1, got %q", lists[0].BoardID)
	}
}

func TestCards(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boards/b1/cards", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": "c1", "name": "Call Jane", "desc": "details", "idList": "l1", "idBoard": "b1"}]`)
	})
	client := newTestClient(t, mux)

	cards, err := client.Cards(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Cards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	card := cards[0]
	if card.ID != "c1" || card.Name != "Call Jane" || card.Description != "details" {
		t.Errorf("unexpected card: %+v", card)
	}
	if card.ListID != "l1" || card.BoardID != "b1" {
		t.Errorf("wire field mapping broken: %+v", card)
	}
}

func TestComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cards/c1/actions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "commentCard" {
			t.Errorf("expected commentCard filter, got %q", got)
		}
		fmt.Fprint(w, `[{"id": "a1", "data": {"text": "call her tomorrow", "card": {"id": "c1"}}}]`)
	})
	client := newTestClient(t, mux)

	comments, err := client.Comments(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	if comments[0].ID != "a1" || comments[0].CardID != "c1" || comments[0].Text != "call her tomorrow" {
		t.Errorf("unexpected comment: %+v", comments[0])
	}
}

func TestAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/members/me/boards", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})
	client := newTestClient(t, mux)

	_, err := client.Boards(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Error("expected body snippet in error")
	}
}
