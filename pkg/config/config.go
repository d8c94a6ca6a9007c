package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMode is returned by Validate for an unknown agent mode.
var ErrInvalidMode = errors.New("invalid agent mode")

// Agent modes.
const (
	ModeMonitor = "monitor"
	ModeSuggest = "suggest"
	ModeAutofix = "autofix"
)

const (
	defaultProvider      = "gemini"
	defaultModel         = "gemini-1.5-flash"
	defaultMaxFiles      = 10
	defaultAITimeout     = 30 * time.Second
	defaultAIRatePerSec  = 2.0
	configDirName        = ".gosec-autofix"
	configFileName       = "config.yaml"
	envAIServiceAPIKey   = "AI_SERVICE_API_KEY"
	envMaxFilesToAnalyze = "MAX_FILES_TO_ANALYZE"
)

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`

	GitHubToken   string `yaml:"github_token"`
	WebhookSecret string `yaml:"webhook_secret"`

	AgentMode          string   `yaml:"agent_mode"`
	MaxFilesToAnalyze  int      `yaml:"max_files_to_analyze"`
	ExcludedFiles      []string `yaml:"excluded_files"`
	ExcludedExtensions []string `yaml:"excluded_extensions"`
	RulesDir           string   `yaml:"rules_dir,omitempty"`

	AITimeout           string  `yaml:"ai_timeout"`
	AIRequestsPerSecond float64 `yaml:"ai_requests_per_second"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SelectedProvider:    defaultProvider,
		SelectedModel:       defaultModel,
		Providers:           make(map[string]ProviderConfig),
		AgentMode:           ModeMonitor,
		MaxFilesToAnalyze:   defaultMaxFiles,
		ExcludedFiles:       []string{".env", ".git", "node_modules", "__pycache__", "venv"},
		ExcludedExtensions:  []string{".jpg", ".png", ".gif", ".mp4", ".mp3", ".pdf"},
		AITimeout:           defaultAITimeout.String(),
		AIRequestsPerSecond: defaultAIRatePerSec,
	}
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfig reads the user config file and applies environment overrides.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// LoadFile reads a config file without environment overrides. A missing
// file yields Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}

// SaveConfig writes the config to the user config file.
func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions for security (api keys)
	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.SetAPIKey("gemini", v)
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.SetAPIKey("openai", v)
	}
	if v := getenv(envAIServiceAPIKey); v != "" {
		c.SetAPIKey(c.provider(), v)
	}
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.GitHubToken = v
	}
	if v := getenv("GITHUB_WEBHOOK_SECRET"); v != "" {
		c.WebhookSecret = v
	}
	if v := getenv("AGENT_MODE"); v != "" {
		c.AgentMode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(envMaxFilesToAnalyze); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.MaxFilesToAnalyze = n
		}
	}
	if v := getenv("EXCLUDED_FILES"); v != "" {
		c.ExcludedFiles = splitList(v)
	}
	if v := getenv("EXCLUDED_EXTENSIONS"); v != "" {
		c.ExcludedExtensions = splitList(v)
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.AgentMode {
	case ModeMonitor, ModeSuggest, ModeAutofix:
	default:
		return fmt.Errorf("%w: %q (want monitor, suggest or autofix)", ErrInvalidMode, c.AgentMode)
	}
	if c.MaxFilesToAnalyze <= 0 {
		c.MaxFilesToAnalyze = defaultMaxFiles
	}
	return nil
}

func (c *Config) SetAPIKey(provider, key string) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}

// AIConfigured reports whether the selected provider has an API key.
func (c *Config) AIConfigured() bool {
	return c.GetAPIKey(c.provider()) != ""
}

// Provider returns the selected provider name, defaulting to gemini.
func (c *Config) Provider() string {
	return c.provider()
}

func (c *Config) provider() string {
	if c.SelectedProvider == "" {
		return defaultProvider
	}
	return c.SelectedProvider
}

// Timeout returns the per-call AI timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.AITimeout)
	if err != nil || d <= 0 {
		return defaultAITimeout
	}
	return d
}

// RateLimit returns the AI request budget per second.
func (c *Config) RateLimit() float64 {
	if c.AIRequestsPerSecond <= 0 {
		return defaultAIRatePerSec
	}
	return c.AIRequestsPerSecond
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
