package config

import "time"

// Config is the root configuration for Quill.
type Config struct {
	Gateway   GatewayConfig    `json:"gateway"`
	Providers []ProviderConfig `json:"providers"`
	Tools     ToolsConfig      `json:"tools"`
	Skills    SkillsConfig     `json:"skills"`
	Workspace string           `json:"workspace"`
	Storage   StorageConfig    `json:"storage"`
	Agent     AgentConfig      `json:"agent"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ProviderConfig configures a single LLM provider. Order in the config file is
// registration order: the first available provider becomes the default.
type ProviderConfig struct {
	Name      string   `json:"name"`
	Driver    string   `json:"driver"` // "anthropic", "openai"
	Model     string   `json:"model"`
	APIKey    string   `json:"api_key,omitempty"`     // direct key or ${{ .Env.VAR }} template
	APIKeyEnv string   `json:"api_key_env,omitempty"` // env var consulted at call time when api_key is empty
	BaseURL   string   `json:"base_url,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// ToolsConfig configures the tool registry and its policy.
type ToolsConfig struct {
	Policy     *PolicyConfig `json:"policy,omitempty"`
	GroupsFile string        `json:"groups_file,omitempty"` // YAML file with named tool groups
}

// PolicyConfig declares the active tool policy. Groups are expanded into tool
// names against the registry's group definitions at startup.
type PolicyConfig struct {
	Mode       string   `json:"mode"` // "allowlist" or "denylist"
	Tools      []string `json:"tools,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Groups     []string `json:"groups,omitempty"`
}

// SkillsConfig configures the skill system.
type SkillsConfig struct {
	Dirs    []string `json:"dirs"`              // skill directories (default: [$QUILL_PATH/skills])
	Timeout Duration `json:"timeout,omitempty"` // per-script wall clock limit
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	UsageDB string `json:"usage_db,omitempty"` // SQLite token-usage database (default: $QUILL_PATH/usage.db)
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	SystemPrompt  string `json:"system_prompt,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
