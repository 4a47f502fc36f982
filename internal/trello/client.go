package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ksutton/cardsift/internal/schema"
)

const defaultBaseURL = "https://api.trello.com/1"

// Client talks to the Trello REST API using key+token authentication.
// All calls are blocking round trips; timeouts come from the HTTP client
// and the caller's context.
type Client struct {
	baseURL    string
	key        string
	token      string
	httpClient *http.Client
}

// NewClient creates a Trello API client with the given credentials.
func NewClient(key, token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		key:     key,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a non-default API base,
// used by tests to point at an httptest server.
func NewClientWithBaseURL(key, token, baseURL string) *Client {
	c := NewClient(key, token)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// Boards returns all boards visible to the authenticated member.
func (c *Client) Boards(ctx context.Context) ([]*schema.Board, error) {
	var boards []*schema.Board
	if err := c.get(ctx, "/members/me/boards", url.Values{"fields": {"id,name"}}, &boards); err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// FindBoard resolves a user-supplied reference (board ID or name,
// case-insensitive) to a concrete board. Returns ErrBoardNotFound when
// nothing matches.
func (c *Client) FindBoard(ctx context.Context, ref string) (*schema.Board, error) {
	boards, err := c.Boards(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range boards {
		if b.ID == ref {
			return b, nil
		}
	}
	for _, b := range boards {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", ref, ErrBoardNotFound)
}

// Lists returns the lists on a board, in the order the service reports
// them. That order is not stable across calls.
func (c *Client) Lists(ctx context.Context, boardID string) ([]*schema.List, error) {
	var lists []*schema.List
	path := fmt.Sprintf("/boards/%s/lists", boardID)
	if err := c.get(ctx, path, url.Values{"fields": {"id,name"}}, &lists); err != nil {
		return nil, fmt.Errorf("failed to list lists for board %s: %w", boardID, err)
	}
	for _, l := range lists {
		l.BoardID = boardID
	}
	return lists, nil
}

// wireCard is the Trello card payload; field names differ from ours.
type wireCard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	IDList  string `json:"idList"`
	IDBoard string `json:"idBoard"`
}

// Cards returns all cards on a board.
func (c *Client) Cards(ctx context.Context, boardID string) ([]*schema.Card, error) {
	var wire []wireCard
	path := fmt.Sprintf("/boards/%s/cards", boardID)
	params := url.Values{"fields": {"id,name,desc,idList,idBoard"}}
	if err := c.get(ctx, path, params, &wire); err != nil {
		return nil, fmt.Errorf("failed to list cards for board %s: %w", boardID, err)
	}

	cards := make([]*schema.Card, 0, len(wire))
	for _, w := range wire {
		cards = append(cards, &schema.Card{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Desc,
			ListID:      w.IDList,
			BoardID:     w.IDBoard,
		})
	}
	return cards, nil
}

// wireAction is the Trello action payload for commentCard actions.
type wireAction struct {
	ID   string `json:"id"`
	Data struct {
		Text string `json:"text"`
		Card struct {
			ID string `json:"id"`
		} `json:"card"`
	} `json:"data"`
}

// Comments returns the comments on a card, newest first as Trello
// reports them.
func (c *Client) Comments(ctx context.Context, cardID string) ([]*schema.Comment, error) {
	var wire []wireAction
	path := fmt.Sprintf("/cards/%s/actions", cardID)
	params := url.Values{"filter": {"commentCard"}}
	if err := c.get(ctx, path, params, &wire); err != nil {
		return nil, fmt.Errorf("failed to list comments for card %s: %w", cardID, err)
	}

	comments := make([]*schema.Comment, 0, len(wire))
	for _, w := range wire {
		comments = append(comments, &schema.Comment{
			ID:     w.ID,
			CardID: cardID,
			Text:   w.Data.Text,
		})
	}
	return comments, nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("token", c.token)

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			URL:        c.baseURL + path,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
