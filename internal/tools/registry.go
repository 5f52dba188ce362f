// ABOUTME: Tool interface and name-based registry for model-invocable capabilities.
// ABOUTME: Dispatch validates arguments per tool and surfaces typed errors the boundary can map.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownTool is returned when a dispatched tool name is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrBadArguments is returned when a tool call's arguments fail to decode as
// the tool's expected shape.
var ErrBadArguments = errors.New("malformed tool arguments")

// Definition describes a tool to the model: name, purpose, and the JSON
// schema of its arguments.
type Definition struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Tool is a capability the model may invoke by name.
type Tool interface {
	// Name returns the tool's unique name.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Schema returns the JSON schema for the tool's arguments.
	Schema() json.RawMessage

	// Execute runs the tool. Implementations must return ErrBadArguments
	// (wrapped) when args do not decode as their expected shape.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry maps tool names to implementations.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With("component", "tools"),
	}
}

// Register adds a tool. Registering the same name twice replaces the earlier
// tool.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Definitions returns the schema list advertised to the model.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, Definition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Schema:      tool.Schema(),
		})
	}
	return defs
}

// Dispatch executes the named tool with the given raw arguments and returns
// its result text. Returns ErrUnknownTool for unregistered names and passes
// through tool errors (including ErrBadArguments) otherwise.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	r.logger.Debug("dispatching tool", "tool", name)

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", name, err)
	}

	r.logger.Debug("tool completed", "tool", name, "result_len", len(result))
	return result, nil
}
