// ABOUTME: Built-in websearch tool bridging the model to the search capability.
// ABOUTME: Joins the text content of all results into a single newline-separated block.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitra-ai/mitra-gateway/internal/search"
)

// WebSearchName is the tool name advertised to the model.
const WebSearchName = "webSearch"

// Searcher is the slice of the search client the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// WebSearchTool answers time-sensitive questions by querying the web.
type WebSearchTool struct {
	searcher Searcher
}

// NewWebSearchTool creates the websearch tool over the given search client.
func NewWebSearchTool(searcher Searcher) *WebSearchTool {
	return &WebSearchTool{searcher: searcher}
}

// webSearchArgs is the typed argument shape for a websearch call.
type webSearchArgs struct {
	Query string `json:"query"`
}

func (t *WebSearchTool) Name() string {
	return WebSearchName
}

func (t *WebSearchTool) Description() string {
	return "Useful for when you need to answer questions about current events. Use this tool to search the web for relevant information."
}

func (t *WebSearchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The search query to look up on the web."
			}
		},
		"required": ["query"]
	}`)
}

// Execute runs the search and concatenates result contents. Unknown fields
// and missing query are argument errors, not upstream failures.
func (t *WebSearchTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()

	var parsed webSearchArgs
	if err := dec.Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return "", fmt.Errorf("%w: query is required", ErrBadArguments)
	}

	results, err := t.searcher.Search(ctx, parsed.Query)
	if err != nil {
		return "", fmt.Errorf("web search failed: %w", err)
	}

	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	return strings.Join(contents, "\n"), nil
}
