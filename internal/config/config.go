package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"paygate/internal/types"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging output format
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// LogConfig holds configuration for application logging
type LogConfig struct {
	Level          LogLevel  `yaml:"level"`
	Format         LogFormat `yaml:"format"`
	OutputPath     string    `yaml:"output_path"`
	RequestLogging bool      `yaml:"request_logging"`
}

// ChainConfig is the raw, unparsed per-chain section of configuration
// before it is converted into a types.Chain.
type ChainConfig struct {
	RPCURL                string `yaml:"rpc_url"`
	TokenContract         string `yaml:"token_contract"`
	TokenDecimals         uint8  `yaml:"token_decimals"`
	Recipient             string `yaml:"recipient"`
	RequiredConfirmations uint64 `yaml:"required_confirmations"`
	PollIntervalMs        uint64 `yaml:"poll_interval_ms"`
	MaxBlockRange         uint64 `yaml:"max_block_range"`
}

// knownNetworks lists every chain id the system knows how to configure.
// ACTIVE_NETWORKS selects a subset of this list.
var knownNetworks = []string{"BEP20", "BEP20_TESTNET", "POLYGON", "AMOY"}

// Config holds the application configuration, loaded once at startup and
// passed by reference thereafter.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// APIKey is the static bearer token required on authenticated endpoints.
	APIKey string `yaml:"api_key"`

	// ActiveNetworks lists the chain ids to start ChainWatchers for; empty
	// means API-only, no watchers.
	ActiveNetworks []string `yaml:"active_networks"`

	// TargetUSDTAmount, when non-empty, overrides every session's own
	// amount for the completion match gate across all chains.
	TargetUSDTAmount string `yaml:"target_usdt_amount"`

	// SenderAddress, when non-empty, is added to every chain's sender
	// allowlist.
	SenderAddress string `yaml:"sender_address"`

	// WebhookURL and WebhookSecret configure the webhook dispatcher. Empty
	// WebhookURL disables outbound delivery.
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`

	Log LogConfig `yaml:"log"`

	Chains map[string]ChainConfig `yaml:"chains"`
}

// LoadConfig loads the application configuration from a YAML file (if
// present) and/or environment variables, with .env support.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	var yamlData []byte
	var err error

	configPaths := []string{
		os.Getenv("CONFIG_PATH"),
		".config.yaml",
		"../.config.yaml",
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}
		if yamlData, err = os.ReadFile(path); err == nil {
			fmt.Printf("Loading config from %s\n", path)
			break
		}
	}

	if err != nil {
		fmt.Println("No config file found, using environment variables")
		return loadFromEnvironment(), nil
	}

	config := &Config{}
	interpolated := interpolateEnvVars(string(yamlData))
	if err := yaml.Unmarshal([]byte(interpolated), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// interpolateEnvVars replaces ${VAR} / ${VAR:-default} / $VAR references
// with their environment values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z0-9_]+)`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match
		defaultValue := ""

		varName = strings.TrimPrefix(varName, "${")
		varName = strings.TrimPrefix(varName, "$")
		varName = strings.TrimSuffix(varName, "}")

		if strings.Contains(varName, ":-") {
			parts := strings.SplitN(varName, ":-", 2)
			varName = parts[0]
			defaultValue = parts[1]
		}

		if value, exists := os.LookupEnv(varName); exists && value != "" {
			return value
		}

		return defaultValue
	})
}

// loadFromEnvironment builds a Config purely from environment variables,
// the path taken when no YAML file is found.
func loadFromEnvironment() *Config {
	active := []string{}
	for _, id := range strings.Split(getEnv("ACTIVE_NETWORKS", ""), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			active = append(active, id)
		}
	}

	chains := make(map[string]ChainConfig, len(knownNetworks))
	for _, id := range knownNetworks {
		chains[id] = loadChainConfig(id)
	}

	return &Config{
		Host:             getEnv("HOST", "0.0.0.0"),
		Port:             getEnv("PORT", "8080"),
		APIKey:           os.Getenv("API_KEY"),
		ActiveNetworks:   active,
		TargetUSDTAmount: os.Getenv("TARGET_USDT_AMOUNT"),
		SenderAddress:    os.Getenv("SENDER_ADDRESS"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		Log: LogConfig{
			Level:          LogLevel(getEnv("LOG_LEVEL", string(LogLevelInfo))),
			Format:         LogFormat(getEnv("LOG_FORMAT", string(LogFormatConsole))),
			OutputPath:     os.Getenv("LOG_OUTPUT_PATH"),
			RequestLogging: parseEnvBool("LOG_REQUESTS", true),
		},
		Chains: chains,
	}
}

// loadChainConfig reads the <CHAIN>_* environment variables for one network id.
func loadChainConfig(id string) ChainConfig {
	return ChainConfig{
		RPCURL:                os.Getenv(id + "_RPC_URL"),
		TokenContract:         os.Getenv(id + "_TOKEN_CONTRACT"),
		TokenDecimals:         uint8(parseEnvUint(id+"_TOKEN_DECIMALS", 18)),
		Recipient:             os.Getenv(id + "_RECIPIENT"),
		RequiredConfirmations: parseEnvUint(id+"_REQUIRED_CONFIRMATIONS", 12),
		PollIntervalMs:        parseEnvUint(id+"_POLL_INTERVAL_MS", types.DefaultPollIntervalMs),
		MaxBlockRange:         parseEnvUint(id+"_MAX_BLOCK_RANGE", types.DefaultMaxBlockRange),
	}
}

// BuildChains converts the active networks' raw ChainConfig entries into
// validated types.Chain values, applying the cross-chain TargetUSDTAmount
// and SenderAddress overrides.
func (c *Config) BuildChains() (map[string]*types.Chain, error) {
	result := make(map[string]*types.Chain, len(c.ActiveNetworks))

	for _, id := range c.ActiveNetworks {
		raw, ok := c.Chains[id]
		if !ok {
			return nil, fmt.Errorf("active network %s has no configuration", id)
		}

		allowlist := map[common.Address]struct{}{}
		if c.SenderAddress != "" {
			allowlist[common.HexToAddress(c.SenderAddress)] = struct{}{}
		}

		chain := &types.Chain{
			ID:                    id,
			RPCUrl:                raw.RPCURL,
			TokenContract:         common.HexToAddress(raw.TokenContract),
			TokenDecimals:         raw.TokenDecimals,
			Recipient:             common.HexToAddress(raw.Recipient),
			RequiredConfirmations: raw.RequiredConfirmations,
			PollIntervalMs:        raw.PollIntervalMs,
			MaxBlockRange:         raw.MaxBlockRange,
			TargetAmount:          c.TargetUSDTAmount,
			SenderAllowlist:       allowlist,
		}

		if err := chain.Validate(); err != nil {
			return nil, err
		}

		result[id] = chain
	}

	return result, nil
}

func parseEnvUint(key string, defaultValue uint64) uint64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// loadEnvFiles tries to load environment variables from .env files in
// multiple locations.
func loadEnvFiles() {
	customEnvPath := os.Getenv("ENV_FILE")
	if customEnvPath != "" {
		if err := godotenv.Load(customEnvPath); err != nil {
			fmt.Printf("Warning: could not load custom .env file from %s: %v\n", customEnvPath, err)
		} else {
			fmt.Printf("Loaded environment variables from custom .env file: %s\n", customEnvPath)
			return
		}
	}

	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment variables from .env file")
		return
	}

	if err := godotenv.Load("../.env"); err == nil {
		fmt.Println("Loaded environment variables from ../.env file")
		return
	}

	fmt.Println("No .env file found, using default values")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
