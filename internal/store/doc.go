// Package store persists conversation transcripts in SQLite.
//
// The ledger is an append-only record of every turn the gateway handles:
// user messages, assistant replies, tool calls, and tool results. It backs
// the history endpoint and exists for audit, not for dialogue state - the
// live conversation window lives in the convo package.
//
// The default ":memory:" path keeps transcripts within the process lifetime;
// point database.path at a file to keep them across restarts.
package store
