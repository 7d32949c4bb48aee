// Package config loads, validates, and resolves Valet configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Assistant: AssistantConfig{
			Name:         "Valet",
			UserName:     "User",
			HistoryLimit: 20,
		},
		LLM: LLMConfig{
			BaseURL:         "https://api.groq.com/openai/v1",
			Model:           "llama-3.3-70b-versatile",
			TranscribeModel: "whisper-large-v3",
			MaxTokens:       1024,
		},
		Actions: ActionsConfig{
			SearchURL: "https://www.google.com/search?q=%s",
			MusicURL:  "https://www.youtube.com/results?search_query=%s",
		},
		Scheduler: SchedulerConfig{
			Store: "sqlite",
		},
		Gateway: GatewayConfig{
			Port: 18650,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
