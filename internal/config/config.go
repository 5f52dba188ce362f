// ABOUTME: Configuration loading and parsing for mitra-gateway.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete mitra-gateway configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Model        ModelConfig        `yaml:"model"`
	Search       SearchConfig       `yaml:"search"`
	Conversation ConversationConfig `yaml:"conversation"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds server address configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// ModelConfig holds the chat-completions backend configuration.
type ModelConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`    // OpenAI-compatible endpoint; Groq by default
	Name       string `yaml:"name"`        // model identifier
	MaxRetries int    `yaml:"max_retries"` // retries on transient upstream failures
}

// SearchConfig holds the web-search capability configuration.
type SearchConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// ConversationConfig holds dialogue engine tuning.
type ConversationConfig struct {
	Retention     time.Duration `yaml:"-"`
	MaxToolRounds int           `yaml:"max_tool_rounds"`

	// Raw string value for YAML unmarshaling
	RetentionRaw string `yaml:"retention"`
}

// DatabaseConfig holds transcript ledger configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"` // ":memory:" keeps transcripts within the process lifetime
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment
// variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in values the file may omit.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "localhost:8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = ":memory:"
	}
	if c.Conversation.Retention == 0 {
		c.Conversation.Retention = 24 * time.Hour
	}
	if c.Conversation.MaxToolRounds == 0 {
		c.Conversation.MaxToolRounds = 10
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("model.api_key is required")
	}

	if c.Search.APIKey == "" {
		return fmt.Errorf("search.api_key is required")
	}

	if c.Conversation.Retention < 0 {
		return fmt.Errorf("conversation.retention must not be negative")
	}

	if c.Conversation.MaxToolRounds < 0 {
		return fmt.Errorf("conversation.max_tool_rounds must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Conversation.RetentionRaw != "" {
		var err error
		cfg.Conversation.Retention, err = time.ParseDuration(cfg.Conversation.RetentionRaw)
		if err != nil {
			return fmt.Errorf("parsing retention %q: %w", cfg.Conversation.RetentionRaw, err)
		}
	}

	return nil
}
