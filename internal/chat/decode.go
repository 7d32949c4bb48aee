package chat

import (
	"encoding/json"
	"strings"

	"github.com/valetapp/valet/internal/domain"
)

// fallbackReply is used when a routed response carries no usable text at all.
const fallbackReply = "Okay."

// routedReply is the wire shape of the LLM's routing decision.
type routedReply struct {
	Type       string          `json:"type"`
	Reply      string          `json:"reply"`
	WorkflowID string          `json:"workflow_id"`
	Params     json.RawMessage `json:"params"`
	Action     *actionPayload  `json:"action"`
}

type actionPayload struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

// classification is the decoded result of one completion.
type classification struct {
	Kind     domain.MessageKind
	Content  string
	Action   *domain.ActionRequest
	Workflow *domain.WorkflowRequest
	// Malformed is set when the raw text was not a usable JSON object and the
	// classification degraded to plain text.
	Malformed bool
}

// classify decodes the model output into one of the three intent shapes.
// Malformed JSON never fails: the raw text becomes a plain-text reply.
func classify(raw string) classification {
	trimmed := strings.TrimSpace(raw)

	var parsed routedReply
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return classification{
			Kind:      domain.KindPlainText,
			Content:   replyText(raw, ""),
			Malformed: true,
		}
	}

	switch {
	// A blank workflow_id still routes as a workflow request; the registry
	// rejects it downstream with an error the user can see.
	case parsed.Type == "workflow":
		return classification{
			Kind:    domain.KindWorkflowRequest,
			Content: replyText(raw, parsed.Reply),
			Workflow: &domain.WorkflowRequest{
				WorkflowID: parsed.WorkflowID,
				Params:     parsed.Params,
			},
		}

	// A bare action object with no type tag is accepted for compatibility
	// with models that drop the discriminator.
	case parsed.Action != nil && (parsed.Type == "action" || parsed.Type == ""):
		return classification{
			Kind:    domain.KindActionRequest,
			Content: replyText(raw, parsed.Reply),
			Action: &domain.ActionRequest{
				Type:   parsed.Action.Type,
				Params: parsed.Action.Params,
			},
		}

	case parsed.Type == "chat" || parsed.Reply != "":
		return classification{
			Kind:    domain.KindPlainText,
			Content: replyText(raw, parsed.Reply),
		}
	}

	// Valid JSON but none of the three shapes. Degrade like a parse failure.
	return classification{
		Kind:      domain.KindPlainText,
		Content:   replyText(raw, parsed.Reply),
		Malformed: true,
	}
}

// replyText picks the user-facing text: the parsed reply if present, else the
// raw completion text, else a generic fallback.
func replyText(raw, reply string) string {
	if strings.TrimSpace(reply) != "" {
		return reply
	}
	if strings.TrimSpace(raw) != "" {
		return raw
	}
	return fallbackReply
}
