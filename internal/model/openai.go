// ABOUTME: OpenAI-compatible chat-completions client (Groq by default) using the official SDK.
// ABOUTME: Converts conversation history to the wire format and retries transient upstream failures.

package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/mitra-ai/mitra-gateway/internal/convo"
	"github.com/mitra-ai/mitra-gateway/internal/tools"
)

// DefaultBaseURL points at Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is the chat model used when config does not override it.
const DefaultModel = "llama-3.3-70b-versatile"

// defaultMaxRetries bounds retries of transient upstream failures.
const defaultMaxRetries = 2

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completions API.
type OpenAIClient struct {
	client     openai.Client
	model      string
	maxRetries int
	logger     *slog.Logger
}

// Config holds OpenAI client construction parameters.
type Config struct {
	APIKey     string
	BaseURL    string // defaults to DefaultBaseURL
	Model      string // defaults to DefaultModel
	MaxRetries int    // additional attempts on transient failures
}

// NewOpenAIClient creates a chat-completions client.
func NewOpenAIClient(cfg Config, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &OpenAIClient{
		client:     openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(baseURL)),
		model:      modelName,
		maxRetries: maxRetries,
		logger:     logger.With("component", "model"),
	}
}

// Complete sends the history plus tool schemas and returns the assistant's
// reply. Deterministic sampling (temperature 0) keeps tool behavior stable.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (convo.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    buildMessages(req.Messages),
		Temperature: openai.Float(0),
	}

	if len(req.Tools) > 0 {
		toolParams, err := buildTools(req.Tools)
		if err != nil {
			return convo.Message{}, err
		}
		params.Tools = toolParams
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			c.logger.Warn("retrying model call", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return convo.Message{}, ctx.Err()
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			if isTransient(err) {
				continue
			}
			return convo.Message{}, fmt.Errorf("model completion failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return convo.Message{}, fmt.Errorf("model returned no choices")
		}
		return fromCompletionMessage(completion.Choices[0].Message), nil
	}

	return convo.Message{}, fmt.Errorf("model completion failed after %d retries: %w", c.maxRetries, lastErr)
}

// buildMessages converts the stored conversation to the wire format.
func buildMessages(history convo.Conversation) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))

	for _, msg := range history {
		switch msg.Role {
		case convo.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))

		case convo.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))

		case convo.RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{
				Role: "assistant",
			}
			if msg.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(msg.Content),
				}
			}
			for _, tc := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case convo.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}

	return out
}

// buildTools converts registry definitions to the wire tool schema.
func buildTools(defs []tools.Definition) ([]openai.ChatCompletionToolParam, error) {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		var schema map[string]interface{}
		if err := json.Unmarshal(def.Schema, &schema); err != nil {
			return nil, fmt.Errorf("tool %s has invalid schema: %w", def.Name, err)
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(schema),
			},
		})
	}
	return out, nil
}

// fromCompletionMessage converts a wire assistant message back to the stored
// form, preserving tool calls verbatim.
func fromCompletionMessage(msg openai.ChatCompletionMessage) convo.Message {
	out := convo.Message{
		Role:    convo.RoleAssistant,
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, convo.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out
}

// isTransient reports whether an upstream error is worth retrying:
// rate limits, server errors, and transport failures.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// Non-API errors are transport-level (timeouts, resets).
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
