package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "failed to create temp dir")
	defer os.RemoveAll(tmpDir)

	testConfig := `
host: ${HOST:-0.0.0.0}
port: ${PORT:-9090}
api_key: ${API_KEY:-test-key}
active_networks: [BEP20_TESTNET]

log:
  level: ${LOG_LEVEL:-debug}
  format: ${LOG_FORMAT:-json}
  request_logging: ${LOG_REQUESTS:-true}

chains:
  BEP20_TESTNET:
    rpc_url: ${BEP20_TESTNET_RPC_URL:-https://test-bsc-rpc.com}
    token_contract: "0x337610d27c682E347C9cD60BD4b3b107C9d34dDd"
    token_decimals: 18
    recipient: "0x1234567890123456789012345678901234567890"
    required_confirmations: ${BEP20_TESTNET_REQUIRED_CONFIRMATIONS:-15}
    poll_interval_ms: 5000
    max_block_range: 500
`

	configPath := filepath.Join(tmpDir, ".config.yaml")
	err = os.WriteFile(configPath, []byte(testConfig), 0644)
	require.NoError(t, err, "failed to write test config")

	oldConfigPath := os.Getenv("CONFIG_PATH")
	os.Setenv("CONFIG_PATH", configPath)
	defer os.Setenv("CONFIG_PATH", oldConfigPath)

	oldPort := os.Getenv("PORT")
	os.Setenv("PORT", "8888")
	defer os.Setenv("PORT", oldPort)

	oldLogLevel := os.Getenv("LOG_LEVEL")
	os.Setenv("LOG_LEVEL", "warn")
	defer os.Setenv("LOG_LEVEL", oldLogLevel)

	cfg, err := LoadConfig()
	require.NoError(t, err, "LoadConfig failed")
	require.NotNil(t, cfg)

	assert.Equal(t, "8888", cfg.Port, "port should match environment override")
	assert.Equal(t, LogLevel("warn"), cfg.Log.Level, "log level should match environment override")
	assert.Equal(t, LogFormat("json"), cfg.Log.Format, "log format should match YAML default")
	assert.Equal(t, []string{"BEP20_TESTNET"}, cfg.ActiveNetworks)

	chain := cfg.Chains["BEP20_TESTNET"]
	assert.Equal(t, "https://test-bsc-rpc.com", chain.RPCURL)
	assert.Equal(t, uint64(15), chain.RequiredConfirmations)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	os.Unsetenv("CONFIG_PATH")

	os.Setenv("PORT", "7777")
	os.Setenv("API_KEY", "env-key")
	os.Setenv("LOG_LEVEL", "error")
	os.Setenv("ACTIVE_NETWORKS", "AMOY")
	os.Setenv("AMOY_RPC_URL", "https://rpc-amoy.polygon.technology")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("API_KEY")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ACTIVE_NETWORKS")
		os.Unsetenv("AMOY_RPC_URL")
	}()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7777", cfg.Port)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, []string{"AMOY"}, cfg.ActiveNetworks)
	assert.Equal(t, "https://rpc-amoy.polygon.technology", cfg.Chains["AMOY"].RPCURL)
}

func TestInterpolateEnvVars(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		env      map[string]string
		expected string
	}{
		{
			name:     "simple variable",
			content:  "value: ${TEST_VAR}",
			env:      map[string]string{"TEST_VAR": "test"},
			expected: "value: test",
		},
		{
			name:     "variable with default",
			content:  "value: ${TEST_VAR:-default}",
			env:      map[string]string{},
			expected: "value: default",
		},
		{
			name:     "variable with empty default",
			content:  "value: ${TEST_VAR:-}",
			env:      map[string]string{},
			expected: "value: ",
		},
		{
			name:     "override default value",
			content:  "value: ${TEST_VAR:-default}",
			env:      map[string]string{"TEST_VAR": "override"},
			expected: "value: override",
		},
		{
			name:     "multiple variables",
			content:  "first: ${FIRST_VAR:-one} second: ${SECOND_VAR:-two}",
			env:      map[string]string{"FIRST_VAR": "1", "SECOND_VAR": "2"},
			expected: "first: 1 second: 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.env {
					os.Unsetenv(k)
				}
			}()

			result := interpolateEnvVars(tt.content)
			assert.Equal(t, tt.expected, result, "interpolation result mismatch")
		})
	}
}
