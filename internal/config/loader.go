package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys and tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	cfg.Gateway.Auth.Token = expandEnvVars(cfg.Gateway.Auth.Token)
	for id, wf := range cfg.Workflows {
		wf.URL = expandEnvVars(wf.URL)
		cfg.Workflows[id] = wf
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
// Needed after unmarshal because YAML overwrites whole structs.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Assistant.Name == "" {
		cfg.Assistant.Name = def.Assistant.Name
	}
	if cfg.Assistant.UserName == "" {
		cfg.Assistant.UserName = def.Assistant.UserName
	}
	if cfg.Assistant.HistoryLimit == 0 {
		cfg.Assistant.HistoryLimit = def.Assistant.HistoryLimit
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.TranscribeModel == "" {
		cfg.LLM.TranscribeModel = def.LLM.TranscribeModel
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.Actions.SearchURL == "" {
		cfg.Actions.SearchURL = def.Actions.SearchURL
	}
	if cfg.Actions.MusicURL == "" {
		cfg.Actions.MusicURL = def.Actions.MusicURL
	}
	if cfg.Scheduler.Store == "" {
		cfg.Scheduler.Store = def.Scheduler.Store
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = def.Gateway.Port
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = def.Gateway.Bind
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = def.Logging.ConsoleStyle
	}
}

// applyEnvOverrides reads VALET_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VALET_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("VALET_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("VALET_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("VALET_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// Workflow endpoints may be supplied entirely via environment:
	// VALET_WORKFLOW_<ID>_URL, e.g. VALET_WORKFLOW_MOM_GENERATOR_URL.
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || val == "" {
			continue
		}
		id, found := strings.CutPrefix(name, "VALET_WORKFLOW_")
		if !found {
			continue
		}
		id, found = strings.CutSuffix(id, "_URL")
		if !found || id == "" {
			continue
		}
		if cfg.Workflows == nil {
			cfg.Workflows = make(map[string]WorkflowEntry)
		}
		cfg.Workflows[id] = WorkflowEntry{URL: val}
	}
}
