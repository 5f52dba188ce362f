// ABOUTME: Tests for configuration loading and validation.
// ABOUTME: Covers YAML parsing, env var expansion, duration parsing, and defaults.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:9090"

model:
  api_key: "gsk_test"
  base_url: "https://api.groq.com/openai/v1"
  name: "llama-3.3-70b-versatile"
  max_retries: 3

search:
  api_key: "tvly_test"
  max_results: 5

conversation:
  retention: 12h
  max_tool_rounds: 4

database:
  path: "/var/lib/mitra/ledger.db"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "gsk_test", cfg.Model.APIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model.Name)
	assert.Equal(t, 3, cfg.Model.MaxRetries)
	assert.Equal(t, "tvly_test", cfg.Search.APIKey)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 12*time.Hour, cfg.Conversation.Retention)
	assert.Equal(t, 4, cfg.Conversation.MaxToolRounds)
	assert.Equal(t, "/var/lib/mitra/ledger.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
model:
  api_key: "gsk_test"
search:
  api_key: "tvly_test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Conversation.Retention)
	assert.Equal(t, 10, cfg.Conversation.MaxToolRounds)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_MODEL_KEY", "gsk_from_env")
	t.Setenv("TEST_SEARCH_KEY", "tvly_from_env")

	path := writeConfig(t, `
model:
  api_key: "${TEST_MODEL_KEY}"
search:
  api_key: "${TEST_SEARCH_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gsk_from_env", cfg.Model.APIKey)
	assert.Equal(t, "tvly_from_env", cfg.Search.APIKey)
}

func TestLoad_UnsetEnvVarFailsValidation(t *testing.T) {
	path := writeConfig(t, `
model:
  api_key: "${MITRA_UNSET_VAR_FOR_TEST}"
search:
  api_key: "tvly_test"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.api_key is required")
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
model:
  api_key: "gsk_test"
search:
  api_key: "tvly_test"
conversation:
  retention: "not-a-duration"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing retention")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "model: [broken")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing model key",
			mutate:  func(c *Config) { c.Model.APIKey = "" },
			wantErr: "model.api_key",
		},
		{
			name:    "missing search key",
			mutate:  func(c *Config) { c.Search.APIKey = "" },
			wantErr: "search.api_key",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Conversation.Retention = -time.Hour },
			wantErr: "retention",
		},
		{
			name:    "negative tool rounds",
			mutate:  func(c *Config) { c.Conversation.MaxToolRounds = -1 },
			wantErr: "max_tool_rounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Model.APIKey = "k"
			cfg.Search.APIKey = "k"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
