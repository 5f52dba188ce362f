// ABOUTME: Model capability interface consumed by the dialogue orchestrator.
// ABOUTME: Given a message history and tool schemas, returns one assistant message.

package model

import (
	"context"

	"github.com/mitra-ai/mitra-gateway/internal/convo"
	"github.com/mitra-ai/mitra-gateway/internal/tools"
)

// CompletionRequest carries the full message history and the tool schemas the
// model may invoke.
type CompletionRequest struct {
	Messages convo.Conversation
	Tools    []tools.Definition
}

// Client is the model inference capability. The returned assistant message
// either carries final text content or a list of tool calls to execute.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (convo.Message, error)
}
