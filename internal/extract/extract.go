// Package extract wraps the Anthropic Messages API behind a fixed
// prompt contract: one request per text unit, returning either the
// structured contact fields or the raw unparsable content.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ksutton/cardsift/internal/schema"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// maxTokens bounds the response size so extraction stays fast per text
// unit; the expected JSON object is tiny.
const maxTokens = 300

// Result is the outcome of one extraction call.
//
// Exactly one case applies:
//   - Fields set: the response parsed as the expected shape.
//   - Raw set: the response could not be parsed; callers log it and
//     treat the unit as containing no contact.
//   - neither set: the model explicitly reported no contact (null).
type Result struct {
	Fields *schema.RawContact
	Raw    string
}

// Parsed reports whether structured fields were returned.
func (r *Result) Parsed() bool {
	return r.Fields != nil
}

// Client issues extraction calls against the Anthropic API.
type Client struct {
	api   anthropic.Client
	model anthropic.Model
}

// NewClient creates an extraction client. If model is empty, DefaultModel
// is used.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: anthropic.Model(model),
	}
}

// Extract runs one extraction call over a single text unit.
//
// A transport or API error is returned as-is; there are no retries, and
// callers treat a failed call the same as "no contact found". A response
// that comes back but cannot be parsed is NOT an error: it yields a
// Result with Raw populated.
func (c *Client) Extract(ctx context.Context, text string) (*Result, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}

	return parseContent(sb.String()), nil
}

// parseContent decodes the model's response into a Result. Markdown code
// fences are stripped first since models wrap JSON in them now and then.
func parseContent(content string) *Result {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if trimmed == "" {
		return &Result{Raw: content}
	}

	// A JSON null decodes into a nil pointer: the model's explicit
	// "no contact here" answer.
	var fields *schema.RawContact
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return &Result{Raw: content}
	}
	return &Result{Fields: fields}
}
