// ABOUTME: Dialogue orchestrator - the control loop between conversation memory, the
// ABOUTME: phone-number guard, the model capability, and the tool registry.

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mitra-ai/mitra-gateway/internal/convo"
	"github.com/mitra-ai/mitra-gateway/internal/model"
	"github.com/mitra-ai/mitra-gateway/internal/phone"
	"github.com/mitra-ai/mitra-gateway/internal/store"
	"github.com/mitra-ai/mitra-gateway/internal/tools"
)

// ErrToolLoopExceeded is returned when the model keeps requesting tools past
// the configured round cap.
var ErrToolLoopExceeded = errors.New("tool loop exceeded maximum rounds")

// DefaultMaxToolRounds bounds how many model-call/tool-dispatch rounds one
// Generate call may take.
const DefaultMaxToolRounds = 10

// SystemPrompt establishes the assistant's behavior contract. It is the first
// message of every conversation.
const SystemPrompt = `You are a helpful personal assistant.

Your responsibilities:
1. If a user shares a phone number:
   - Detect it clearly.
   - Acknowledge the phone number.
   - Show a warning message:
     • 📱 Phone number detected
     • Your credit score has been decremented by 10 points
     • Warning: after too many attempts your account might be blocked
   - Always format the warning in **separate lines**.

2. For all other user queries:
   - Provide accurate, helpful, and concise answers.
   - If you need up-to-date information, call the webSearch tool.

3. Maintain a polite, professional tone.`

// Service drives one conversational exchange per Generate call.
type Service struct {
	conversations *convo.Store
	registry      *tools.Registry
	model         model.Client
	ledger        store.Store
	logger        *slog.Logger
	maxToolRounds int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxToolRounds overrides the tool-loop round cap.
func WithMaxToolRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxToolRounds = n
		}
	}
}

// WithLedger records every turn to the transcript store. Ledger failures are
// logged and never fail a Generate call.
func WithLedger(ledger store.Store) Option {
	return func(s *Service) { s.ledger = ledger }
}

// New creates a dialogue service.
func New(conversations *convo.Store, registry *tools.Registry, modelClient model.Client, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		conversations: conversations,
		registry:      registry,
		model:         modelClient,
		logger:        logger.With("component", "dialogue"),
		maxToolRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces the assistant's reply to userMessage within threadID.
//
// A detected phone number short-circuits deterministically: the warning is
// synthesized locally and the model is never consulted. Otherwise the tool
// loop runs until the model answers without tool calls or the round cap hits.
// Writers on the same thread are serialized, so concurrent requests append in
// arrival order instead of losing turns.
func (s *Service) Generate(ctx context.Context, userMessage, threadID string) (string, error) {
	unlock := s.conversations.LockThread(threadID)
	defer unlock()

	history, ok := s.conversations.Get(threadID)
	if !ok {
		history = convo.Conversation{convo.SystemMessage(SystemPrompt)}
	}

	logger := s.logger.With("thread_id", threadID)

	if detection := phone.Detect(userMessage); detection.Detected {
		logger.Info("phone number detected", "method", detection.Method)

		warning := phoneWarning(detection)
		history = append(history, convo.UserMessage(userMessage), convo.AssistantMessage(warning))
		s.conversations.Set(threadID, history)

		s.record(threadID, convo.UserMessage(userMessage), convo.AssistantMessage(warning))
		return warning, nil
	}

	history = append(history, convo.UserMessage(userMessage))
	s.record(threadID, convo.UserMessage(userMessage))

	for round := 0; round < s.maxToolRounds; round++ {
		reply, err := s.model.Complete(ctx, model.CompletionRequest{
			Messages: history,
			Tools:    s.registry.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("generating reply: %w", err)
		}

		history = append(history, reply)
		s.record(threadID, reply)

		if len(reply.ToolCalls) == 0 {
			s.conversations.Set(threadID, history)
			logger.Debug("reply generated", "rounds", round+1, "history_len", len(history))
			return reply.Content, nil
		}

		for _, call := range reply.ToolCalls {
			logger.Info("tool requested", "tool", call.Name, "call_id", call.ID)

			result, err := s.registry.Dispatch(ctx, call.Name, call.Arguments)
			if err != nil {
				return "", err
			}

			toolMsg := convo.ToolMessage(call.ID, result)
			history = append(history, toolMsg)
			s.record(threadID, toolMsg)
		}
	}

	return "", fmt.Errorf("%w (%d)", ErrToolLoopExceeded, s.maxToolRounds)
}

// phoneWarning renders the fixed short-circuit template for a detection.
func phoneWarning(d phone.Result) string {
	return fmt.Sprintf("📱 Phone number detected: %s\nYour credit score has been decremented by 10 points\n⚠️ Warning: after too many attempts your account might be blocked.", d.Formatted)
}

// record appends turns to the transcript ledger with a detached timeout
// context, so recording survives request cancellation and its failures never
// surface to the caller.
func (s *Service) record(threadID string, messages ...convo.Message) {
	if s.ledger == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.ledger.EnsureThread(ctx, threadID); err != nil {
		s.logger.Error("failed to ensure ledger thread", "error", err, "thread_id", threadID)
		return
	}

	now := time.Now()
	for _, msg := range messages {
		entry := &store.Message{
			ID:         uuid.New().String(),
			ThreadID:   threadID,
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			CreatedAt:  now,
		}
		if len(msg.ToolCalls) > 0 {
			// One assistant message may carry several calls; the ledger keeps
			// the first name for quick scanning, the conversation itself stays
			// authoritative.
			entry.ToolName = msg.ToolCalls[0].Name
		}
		if err := s.ledger.SaveMessage(ctx, entry); err != nil {
			s.logger.Error("failed to record message", "error", err, "thread_id", threadID, "role", entry.Role)
		}
	}
}
