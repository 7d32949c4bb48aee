package cli

import (
	"fmt"

	"github.com/valetapp/valet/internal/action"
	"github.com/valetapp/valet/internal/chat"
	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/hooks"
	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/routing"
	"github.com/valetapp/valet/internal/workflow"
)

// runtime bundles the wired conversation core shared by serve and message.
type runtime struct {
	cfg      config.Config
	orch     *routing.Orchestrator
	registry *workflow.Registry
	hooks    *hooks.Manager
}

// loadConfig loads and validates the configuration, logging every issue.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return config.Config{}, err
	}

	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return config.Config{}, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	log = buildLogger(cfg.Logging, logLevel)
	return cfg, nil
}

// buildLogger derives the process logger from the loaded config. An explicit
// --log-level flag wins over the configured level; the console style always
// comes from config.
func buildLogger(cfg config.LoggingConfig, flagLevel string) *logging.Logger {
	level := cfg.Level
	if flagLevel != "" {
		level = flagLevel
	}
	return logging.NewStyled(nil, level, cfg.ConsoleStyle)
}

// buildRuntime wires the orchestrator pipeline from config.
func buildRuntime(cfg config.Config) (*runtime, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("no LLM API key configured (set llm.apiKey or VALET_API_KEY)")
	}

	client := llm.NewGroqClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	registry := workflow.NewRegistry(cfg.Workflows, log)
	router := chat.NewIntentRouter(client, registry, cfg.Assistant, cfg.LLM, log)
	dispatcher := action.NewDispatcher(cfg.Actions, log)
	execClient := workflow.NewClient(registry, log)

	hookMgr := hooks.NewManager(log)
	hooks.RegisterCommandHooks(hookMgr, cfg.Hooks)

	return &runtime{
		cfg:      cfg,
		orch:     routing.NewOrchestrator(router, dispatcher, execClient, hookMgr, log),
		registry: registry,
		hooks:    hookMgr,
	}, nil
}
