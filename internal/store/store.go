// ABOUTME: Store interface and data types for the transcript ledger.
// ABOUTME: Defines Thread, Message and the Store interface for persistence operations.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Thread represents one conversation thread in the ledger.
type Thread struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one recorded turn within a thread.
//
// Role mirrors the conversation roles (system, user, assistant, tool).
// ToolName and ToolCallID are populated for tool traffic only.
type Message struct {
	ID         string
	ThreadID   string
	Role       string
	Content    string
	ToolName   string
	ToolCallID string
	CreatedAt  time.Time
}

// Store persists conversation transcripts for the history endpoint.
type Store interface {
	// EnsureThread creates the thread row if it does not exist and bumps
	// its updated_at timestamp either way.
	EnsureThread(ctx context.Context, id string) error
	GetThread(ctx context.Context, id string) (*Thread, error)
	ListThreads(ctx context.Context, limit int) ([]*Thread, error)

	SaveMessage(ctx context.Context, msg *Message) error
	GetThreadMessages(ctx context.Context, threadID string, limit int) ([]*Message, error)

	// Close releases any resources held by the store.
	Close() error
}
