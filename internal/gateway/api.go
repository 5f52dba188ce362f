// ABOUTME: HTTP API handlers for the chat boundary.
// ABOUTME: Translates wire requests into dialogue calls and maps engine errors to status codes.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mitra-ai/mitra-gateway/internal/dialogue"
	"github.com/mitra-ai/mitra-gateway/internal/store"
	"github.com/mitra-ai/mitra-gateway/internal/tools"
)

// generator is the slice of the dialogue service the handlers need.
type generator interface {
	Generate(ctx context.Context, userMessage, threadID string) (string, error)
}

// ChatRequest is the JSON request body for POST /chat.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

// ChatResponse is the JSON response for POST /chat.
type ChatResponse struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}

// HistoryMessage is one recorded turn in GET /chat/{threadID}/history.
type HistoryMessage struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// HistoryResponse is the JSON response for GET /chat/{threadID}/history.
type HistoryResponse struct {
	ThreadID string           `json:"threadId"`
	Messages []HistoryMessage `json:"messages"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// routes builds the HTTP router.
func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(g.requestLogger)
	r.Use(corsMiddleware)

	r.Get("/", g.handleRoot)
	r.Get("/health", g.handleHealth)
	r.Post("/chat", g.handleChat)
	r.Get("/chat/{threadID}/history", g.handleHistory)

	return r
}

// handleRoot is the liveness text endpoint.
func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "mitra-gateway is running")
}

// handleHealth reports gateway health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChat handles POST /chat. A missing threadId is generated here so the
// client can continue the thread on its next request.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = newThreadID()
	}

	reply, err := g.generator().Generate(r.Context(), req.Message, threadID)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Message: reply, ThreadID: threadID})
}

// handleHistory handles GET /chat/{threadID}/history from the transcript
// ledger.
func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	if _, err := g.store.GetThread(r.Context(), threadID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "thread not found"})
			return
		}
		g.writeError(w, r, err)
		return
	}

	messages, err := g.store.GetThreadMessages(r.Context(), threadID, 0)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	resp := HistoryResponse{ThreadID: threadID, Messages: make([]HistoryMessage, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, HistoryMessage{
			ID:         msg.ID,
			Role:       msg.Role,
			Content:    msg.Content,
			ToolName:   msg.ToolName,
			ToolCallID: msg.ToolCallID,
			CreatedAt:  msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeError maps engine errors onto status codes: tool misuse is
// client-shaped, everything else is an upstream failure.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.Error("request failed", "path", r.URL.Path, "error", err)

	switch {
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, tools.ErrBadArguments):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, dialogue.ErrToolLoopExceeded):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// newThreadID generates a boundary thread identifier: millisecond timestamp
// plus a short random suffix. Stable identity, not collision-proof.
func newThreadID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request with outcome metadata.
func (g *Gateway) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		g.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// corsMiddleware allows the chat UI (served elsewhere) to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// generator returns the reply generator, preferring a test override.
func (g *Gateway) generator() generator {
	if g.mockGenerator != nil {
		return g.mockGenerator
	}
	return g.dialogue
}
