package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationMessageJSON(t *testing.T) {
	msg := ConversationMessage{
		ID:        "m1",
		Role:      RoleAssistant,
		Content:   "Searching now.",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Kind:      KindActionRequest,
		Action: &ActionRequest{
			Type:   "web_search",
			Params: map[string]string{"query": "rust async patterns"},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded ConversationMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, KindActionRequest, decoded.Kind)
	require.NotNil(t, decoded.Action)
	assert.Equal(t, "web_search", decoded.Action.Type)
	assert.Equal(t, "rust async patterns", decoded.Action.Params["query"])
	assert.Nil(t, decoded.Workflow)
}

func TestPlainTextOmitsUnion(t *testing.T) {
	msg := ConversationMessage{
		ID:      "m2",
		Role:    RoleAssistant,
		Content: "Hello!",
		Kind:    KindPlainText,
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"action"`)
	assert.NotContains(t, string(data), `"workflow"`)
	assert.NotContains(t, string(data), `"failed"`)
}

func TestWorkflowRequestParamsRoundTrip(t *testing.T) {
	req := WorkflowRequest{
		WorkflowID: "MOM_GENERATOR",
		Params:     json.RawMessage(`{"meeting_notes":"discussed launch"}`),
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded WorkflowRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "MOM_GENERATOR", decoded.WorkflowID)
	assert.JSONEq(t, `{"meeting_notes":"discussed launch"}`, string(decoded.Params))
}
