package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Assistant.HistoryLimit < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "assistant.historyLimit",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Assistant.HistoryLimit),
		})
	}

	if cfg.LLM.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxTokens",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.LLM.MaxTokens),
		})
	}
	if cfg.LLM.Temperature != nil && (*cfg.LLM.Temperature < 0 || *cfg.LLM.Temperature > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.temperature",
			Message: fmt.Sprintf("must be within [0, 2], got %v", *cfg.LLM.Temperature),
		})
	}

	for id, wf := range cfg.Workflows {
		path := "workflows." + id + ".url"
		trimmed := strings.TrimSpace(wf.URL)
		if trimmed == "" {
			// An empty mapping is tolerated at load time; execution fails
			// fast with a ConfigurationError naming the key.
			continue
		}
		if u, err := url.Parse(trimmed); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: fmt.Sprintf("must be an http(s) URL, got %q", wf.URL),
			})
		}
	}

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when gateway.bind is \"custom\"",
		})
	}

	validStores := []string{"sqlite", "memory"}
	if cfg.Scheduler.Store != "" && !slices.Contains(validStores, cfg.Scheduler.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "scheduler.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Scheduler.Store),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	for _, group := range []struct {
		path    string
		entries []HookEntry
	}{
		{"hooks.serverStart", cfg.Hooks.ServerStart},
		{"hooks.serverStop", cfg.Hooks.ServerStop},
		{"hooks.turnCompleted", cfg.Hooks.TurnCompleted},
		{"hooks.actionExecuted", cfg.Hooks.ActionExecuted},
	} {
		for i, h := range group.entries {
			if strings.TrimSpace(h.Command) == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", group.path, i),
					Message: "command must not be empty",
				})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].timeout", group.path, i),
					Message: fmt.Sprintf("must not be negative, got %d", h.Timeout),
				})
			}
		}
	}

	return issues
}
