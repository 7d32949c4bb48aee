// Package workflow maps workflow identifiers to configured webhook endpoints
// and executes them with bounded-time, fail-safe semantics.
package workflow

// Well-known workflow identifiers. New workflows are added by declaring a
// Descriptor and configuring an endpoint; no dispatch code changes.
const (
	IDMOMGenerator = "MOM_GENERATOR"
)

// Descriptor declares a workflow's identity and input contract. The intent
// router uses descriptors to enumerate workflows in the system prompt.
type Descriptor struct {
	ID          string
	Description string
	ParamSpec   string // JSON shape of the required params, shown to the LLM
}

// BuiltinDescriptors lists the workflows Valet ships with.
var BuiltinDescriptors = []Descriptor{
	{
		ID: IDMOMGenerator,
		Description: "Use this when the user provides meeting notes, transcripts, or raw " +
			"discussion text and wants Minutes of Meeting (summary, decisions, action items).",
		ParamSpec: `{"meeting_notes": "..."}`,
	},
}

// MOMOutput is the declared output contract of the MOM_GENERATOR workflow.
type MOMOutput struct {
	Summary     string   `json:"summary"`
	Decisions   []string `json:"decisions"`
	ActionItems []string `json:"action_items"`
}
