// ABOUTME: Message and conversation types shared across the dialogue engine.
// ABOUTME: Conversations are ordered role-tagged message lists seeded with a system prompt.

package convo

import "encoding/json"

// Role tags a message with its author within the model protocol.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to invoke a tool by name.
// Arguments is the raw JSON argument payload exactly as the model produced it.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one turn in a conversation.
//
// Content may be empty on assistant messages that only carry tool calls.
// ToolCallID is set only on tool-role messages and correlates the result back
// to the assistant tool call that requested it.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role text message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage builds a tool-role result message correlated to a tool call.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// Conversation is the ordered message history of one thread. The first
// message is always the system prompt; order is append-only.
type Conversation []Message
