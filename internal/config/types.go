package config

// Config is the root configuration for Valet.
type Config struct {
	Assistant AssistantConfig          `yaml:"assistant,omitempty"`
	LLM       LLMConfig                `yaml:"llm,omitempty"`
	Workflows map[string]WorkflowEntry `yaml:"workflows,omitempty"`
	Actions   ActionsConfig            `yaml:"actions,omitempty"`
	Scheduler SchedulerConfig          `yaml:"scheduler,omitempty"`
	Gateway   GatewayConfig            `yaml:"gateway,omitempty"`
	Logging   LoggingConfig            `yaml:"logging,omitempty"`
	Hooks     HooksConfig              `yaml:"hooks,omitempty"`
}

// AssistantConfig controls the assistant persona and conversation window.
type AssistantConfig struct {
	Name         string `yaml:"name,omitempty"`         // persona name shown in the system prompt
	UserName     string `yaml:"userName,omitempty"`     // how the assistant addresses the user
	HistoryLimit int    `yaml:"historyLimit,omitempty"` // sliding window size, most-recent-N
}

// LLMConfig configures the completion and transcription endpoints.
type LLMConfig struct {
	APIKey            string   `yaml:"apiKey,omitempty"` // supports ${ENV_VAR} expansion
	BaseURL           string   `yaml:"baseUrl,omitempty"`
	Model             string   `yaml:"model,omitempty"`
	TranscribeModel   string   `yaml:"transcribeModel,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty"`
	MaxTokens         int      `yaml:"maxTokens,omitempty"`
}

// WorkflowEntry maps a workflow identifier to its webhook endpoint.
// URLs come from configuration only; they are never hardcoded.
type WorkflowEntry struct {
	URL string `yaml:"url"`
}

// ActionsConfig configures the local action dispatcher.
type ActionsConfig struct {
	SearchURL string            `yaml:"searchUrl,omitempty"` // %s receives the encoded query
	MusicURL  string            `yaml:"musicUrl,omitempty"`
	Apps      map[string]string `yaml:"apps,omitempty"` // extra app aliases, merged over built-ins
}

// SchedulerConfig configures the local event store.
type SchedulerConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	AllowedOrigins []string    `yaml:"allowedOrigins,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Token string `yaml:"token,omitempty"` // empty token disables auth (loopback-only setups)
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// HooksConfig defines shell-command hooks for lifecycle events.
type HooksConfig struct {
	ServerStart    []HookEntry `yaml:"serverStart,omitempty"`
	ServerStop     []HookEntry `yaml:"serverStop,omitempty"`
	TurnCompleted  []HookEntry `yaml:"turnCompleted,omitempty"`
	ActionExecuted []HookEntry `yaml:"actionExecuted,omitempty"`
}

// HookEntry defines a single hook command.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
