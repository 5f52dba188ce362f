// Package convo holds the conversation memory model.
//
// A Conversation is an append-only list of role-tagged Messages whose first
// entry is always the system prompt. The Store maps thread IDs to
// conversations with a retention window refreshed on write; idle threads
// expire and are recreated from the system prompt on next use.
//
// The Store also hands out per-thread locks so that concurrent requests on
// the same thread serialize instead of losing turns to last-write-wins.
package convo
