// Package chat implements the intent router: it owns conversation history
// and turns raw user text into exactly one classified assistant message.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/domain"
	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/workflow"
)

// errorReply is the fixed reply when the completion call itself fails.
const errorReply = "I'm having trouble processing that request. Please try again."

// defaultTemperature is used when the config does not pin one.
const defaultTemperature = 0.7

// IntentRouter classifies user input into workflow, action, or chat intents.
// It is the sole owner of session history.
type IntentRouter struct {
	client   llm.Client
	registry *workflow.Registry
	sessions *SessionStore

	assistant config.AssistantConfig
	llmCfg    config.LLMConfig
	log       *logging.Logger
}

// NewIntentRouter wires a router over an LLM client and workflow registry.
func NewIntentRouter(client llm.Client, registry *workflow.Registry,
	assistant config.AssistantConfig, llmCfg config.LLMConfig, log *logging.Logger) *IntentRouter {
	return &IntentRouter{
		client:    client,
		registry:  registry,
		sessions:  NewSessionStore(),
		assistant: assistant,
		llmCfg:    llmCfg,
		log:       log.Sub("chat"),
	}
}

// Process runs one conversation turn and returns the assistant's classified
// reply. It never returns nil: LLM failures become a fixed plain-text reply
// and malformed completions degrade to the raw text. Turns on the same
// session key serialize; the user message is committed to history before the
// completion call, the assistant message strictly after.
func (r *IntentRouter) Process(ctx context.Context, sessionKey, text string) *domain.ConversationMessage {
	entry := r.sessions.acquire(sessionKey)
	defer entry.release()

	now := time.Now().UTC()
	entry.session.Messages = append(entry.session.Messages, domain.ConversationMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: now,
		Kind:      domain.KindPlainText,
	})

	reply := r.complete(ctx, entry.session.Messages)

	entry.session.Messages = append(entry.session.Messages, reply)
	entry.session.Messages = trimWindow(entry.session.Messages, r.historyLimit())
	entry.session.UpdatedAt = time.Now().UTC()

	out := reply
	return &out
}

func (r *IntentRouter) complete(ctx context.Context, history []domain.ConversationMessage) domain.ConversationMessage {
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	temp := r.llmCfg.Temperature
	if temp == nil {
		t := defaultTemperature
		temp = &t
	}

	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		System:      buildSystemPrompt(r.assistant, r.registry.Descriptors()),
		Messages:    msgs,
		MaxTokens:   r.llmCfg.MaxTokens,
		Temperature: temp,
		JSONObject:  true,
	})
	if err != nil {
		r.log.Error().Err(err).Msg("completion failed")
		return domain.ConversationMessage{
			ID:        uuid.NewString(),
			Role:      domain.RoleAssistant,
			Content:   errorReply,
			Timestamp: time.Now().UTC(),
			Kind:      domain.KindPlainText,
		}
	}

	c := classify(resp.Content)
	if c.Malformed {
		r.log.Warn().Str("raw", resp.Content).Msg("completion was not a routable JSON object")
	}

	return domain.ConversationMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   c.Content,
		Timestamp: time.Now().UTC(),
		Kind:      c.Kind,
		Action:    c.Action,
		Workflow:  c.Workflow,
	}
}

// CommitReply writes an enriched assistant message back into session
// history, matched by ID against the message Process stored. Callers use
// this after merging execution results (workflow output, failure rewrites)
// so the next turn's context sees what actually happened.
func (r *IntentRouter) CommitReply(sessionKey string, msg *domain.ConversationMessage) {
	if msg == nil {
		return
	}
	r.sessions.amend(sessionKey, msg)
}

// ClearHistory resets one session's sliding window.
func (r *IntentRouter) ClearHistory(sessionKey string) {
	r.sessions.Clear(sessionKey)
	r.log.Info().Str("session", sessionKey).Msg("history cleared")
}

// History returns a copy of one session's messages.
func (r *IntentRouter) History(sessionKey string) []domain.ConversationMessage {
	return r.sessions.Snapshot(sessionKey)
}

func (r *IntentRouter) historyLimit() int {
	if r.assistant.HistoryLimit > 0 {
		return r.assistant.HistoryLimit
	}
	return 20
}

// trimWindow keeps the most recent limit messages.
func trimWindow(msgs []domain.ConversationMessage, limit int) []domain.ConversationMessage {
	if len(msgs) <= limit {
		return msgs
	}
	return msgs[len(msgs)-limit:]
}
