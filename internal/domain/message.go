// Package domain defines the core conversation types shared across Valet.
package domain

import (
	"encoding/json"
	"time"
)

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MessageKind classifies an assistant reply after intent routing.
type MessageKind string

const (
	// KindPlainText is a conversational reply with no side effects.
	KindPlainText MessageKind = "plain_text"
	// KindActionRequest carries a local desktop action to perform.
	KindActionRequest MessageKind = "action_request"
	// KindWorkflowRequest carries an external workflow to execute.
	KindWorkflowRequest MessageKind = "workflow_request"
)

// ActionRequest is an ephemeral local-action record. It is consumed by the
// action dispatcher immediately after classification and never persisted.
type ActionRequest struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

// WorkflowRequest is an ephemeral external-workflow record.
type WorkflowRequest struct {
	WorkflowID string          `json:"workflowId"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// ConversationMessage is a single turn in the transcript. The Kind field
// discriminates which of Action/Workflow is populated; both are nil for
// plain text.
type ConversationMessage struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"kind"`

	Action   *ActionRequest   `json:"action,omitempty"`
	Workflow *WorkflowRequest `json:"workflow,omitempty"`

	// Set by the orchestrator after a workflow call completes.
	WorkflowResult json.RawMessage  `json:"workflowResult,omitempty"`
	Failed         bool             `json:"failed,omitempty"`
	Original       *WorkflowRequest `json:"original,omitempty"`
}
