package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
)

// Slot is one candidate meeting window.
type Slot struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// Suggestion is the advisor's decision: ranked slots plus a draft message the
// user can send to the other party.
type Suggestion struct {
	SuggestedSlots []Slot `json:"suggestedSlots"`
	MessageDraft   string `json:"messageDraft"`
}

// Advisor asks the LLM to pick meeting slots. Unlike the chat path, errors
// propagate to the caller: a failed suggestion is visible, not absorbed.
type Advisor struct {
	client llm.Client
	model  string
	log    *logging.Logger
}

// NewAdvisor builds an advisor over an LLM client.
func NewAdvisor(client llm.Client, model string, log *logging.Logger) *Advisor {
	return &Advisor{client: client, model: model, log: log.Sub("schedule")}
}

const advisorSystemPrompt = `You are a scheduling assistant. Given the user's intent, their constraints, the candidate slots, and their existing calendar events, pick the best slots and draft a short message proposing them.

Respond with a single JSON object:
  {"suggestedSlots": [{"start": "...", "end": "...", "reason": "..."}], "messageDraft": "..."}

Only suggest slots from the candidates that do not conflict with existing events.`

// Suggest asks the model to choose among candidate slots.
func (a *Advisor) Suggest(ctx context.Context, intent, constraints string, candidates []Slot, events []Event) (*Suggestion, error) {
	payload, err := json.Marshal(map[string]any{
		"intent":      intent,
		"constraints": constraints,
		"candidates":  candidates,
		"events":      events,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding advisor input: %w", err)
	}

	temp := 0.5
	resp, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:       a.model,
		System:      advisorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(payload)}},
		Temperature: &temp,
		JSONObject:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("slot suggestion failed: %w", err)
	}

	var out Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &out); err != nil {
		return nil, fmt.Errorf("decoding slot suggestion: %w", err)
	}

	a.log.Debug().Int("slots", len(out.SuggestedSlots)).Msg("slots suggested")
	return &out, nil
}
