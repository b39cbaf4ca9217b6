// Package config loads the runtime's YAML-defined knobs (spec §6
// Configuration and knobs; SPEC_FULL.md Ambient Stack).
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds one LLM provider's credentials and routing.
type ProviderConfig struct {
	Name        string `yaml:"name"`
	APIKey      string `yaml:"api_key"`
	BYOKEnvVar  string `yaml:"byok_env_var"`
	GatewayURL  string `yaml:"gateway_url"`
	GatewayKey  string `yaml:"gateway_key"`
}

// ActionDepth maps an action key (spec GLOSSARY) to its recursion cap.
type ActionDepth struct {
	ActionKey string `yaml:"action_key"`
	MaxDepth  int    `yaml:"max_depth"`
}

// RuntimeConfig is the full set of knobs spec §6 names.
type RuntimeConfig struct {
	MaxLLMMessages int           `yaml:"max_llm_messages"`
	ChunkSize      int           `yaml:"chunk_size"`
	ActionDepths   []ActionDepth `yaml:"action_depths"`

	ToolRepetitionWindowSeconds int `yaml:"tool_repetition_window_seconds"`
	ToolRepetitionThreshold     int `yaml:"tool_repetition_threshold"`

	TextRepetitionCheckInterval int `yaml:"text_repetition_check_interval"`
	TextRepetitionWindow        int `yaml:"text_repetition_window"`

	CompletionToolNames []string         `yaml:"completion_tool_names"`
	Providers           []ProviderConfig `yaml:"providers"`

	SessionStoreDSN string `yaml:"session_store_dsn"`
	LogJSON         bool   `yaml:"log_json"`
	MetricsAddr     string `yaml:"metrics_addr"`
}

// MaxDepthFor looks up the configured recursion cap for actionKey, falling
// back to defaultDepth if unconfigured.
func (c RuntimeConfig) MaxDepthFor(actionKey string, defaultDepth int) int {
	for _, ad := range c.ActionDepths {
		if ad.ActionKey == actionKey {
			return ad.MaxDepth
		}
	}
	return defaultDepth
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// Load reads a RuntimeConfig from a YAML document at path, expanding
// ${ENV_VAR} references against the process environment (spec's BYOK
// override: "per-user API credentials overriding platform defaults").
func Load(path string) (*RuntimeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(raw), func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})

	var cfg RuntimeConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields with the spec §6 defaults.
func (c *RuntimeConfig) ApplyDefaults() {
	if c.MaxLLMMessages <= 0 {
		c.MaxLLMMessages = 200
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 128
	}
	if c.ToolRepetitionWindowSeconds <= 0 {
		c.ToolRepetitionWindowSeconds = 120
	}
	if c.ToolRepetitionThreshold <= 0 {
		c.ToolRepetitionThreshold = 2
	}
	if c.TextRepetitionCheckInterval <= 0 {
		c.TextRepetitionCheckInterval = 50
	}
	if c.TextRepetitionWindow <= 0 {
		c.TextRepetitionWindow = 4000
	}
	if c.SessionStoreDSN == "" {
		c.SessionStoreDSN = ":memory:"
	}
}
