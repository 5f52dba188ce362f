// Package gateway owns the HTTP boundary and process wiring.
//
// # Overview
//
// The gateway builds every component from config - transcript store,
// conversation memory, tool registry, search client, model client, dialogue
// service - and serves the chat API until shutdown.
//
// # Endpoints
//
//   - POST /chat: {message, threadId?} -> {message, threadId}. A missing
//     threadId is generated (timestamp + random suffix) and returned so the
//     client can continue the thread.
//   - GET /chat/{threadID}/history: recorded transcript for a thread.
//   - GET /health: JSON health status.
//   - GET /: liveness text.
//
// # Error Mapping
//
// Unknown tools and malformed tool arguments map to 400; an exceeded tool
// loop maps to 502; anything else is a 500 with a generic body.
package gateway
