package chat

import (
	"fmt"
	"strings"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/workflow"
)

// buildSystemPrompt assembles the routing instruction: persona, the workflow
// catalogue with parameter schemas, the local action types, and the mandatory
// single-JSON-object response contract.
func buildSystemPrompt(assistant config.AssistantConfig, descriptors []workflow.Descriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a helpful desktop assistant", assistant.Name)
	if assistant.UserName != "" {
		fmt.Fprintf(&b, " for %s", assistant.UserName)
	}
	b.WriteString(". You route every user message to exactly one of three intents: an external workflow, a local desktop action, or a plain chat reply.\n\n")

	b.WriteString("Available workflows:\n")
	if len(descriptors) == 0 {
		b.WriteString("  (none configured)\n")
	}
	for _, d := range descriptors {
		fmt.Fprintf(&b, "  - %s", d.ID)
		if d.Description != "" {
			fmt.Fprintf(&b, ": %s", d.Description)
		}
		if d.ParamSpec != "" {
			fmt.Fprintf(&b, " Params: %s", d.ParamSpec)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nAvailable local actions:\n")
	b.WriteString("  - web_search: open a web search. Params: {\"query\": \"...\"}\n")
	b.WriteString("  - play_music: play music by searching a video site. Params: {\"query\": \"...\"}\n")
	b.WriteString("  - launch_app: open a desktop application. Params: {\"appName\": \"...\"}\n")

	b.WriteString(`
You MUST respond with a single JSON object in exactly one of these shapes:
  {"type": "workflow", "workflow_id": "...", "params": {...}, "reply": "short confirmation for the user"}
  {"type": "action", "action": {"type": "...", "params": {...}}, "reply": "short confirmation for the user"}
  {"type": "chat", "reply": "your conversational answer"}

Never emit anything outside the JSON object. Use "workflow" only for workflows listed above, "action" only for actions listed above, and "chat" for everything else.`)

	return b.String()
}
