package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAPIKey     = "AZURE_OPENAI_KEY"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion = "AZURE_OPENAI_API_VERSION"
	EnvLogLevel   = "PYTESTGEN_LOG_LEVEL"
)

// DefaultAPIVersion is used when AZURE_OPENAI_API_VERSION is unset.
const DefaultAPIVersion = "2023-05-15"

// DefaultLogLevel keeps diagnostics quiet unless something goes wrong.
const DefaultLogLevel = "warn"

// Config holds all configuration for the tool
type Config struct {
	Azure    AzureConfig
	LogLevel string
}

// AzureConfig identifies the Azure OpenAI deployment used for generation
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

// Enabled reports whether the remote path can be used: endpoint, key and
// deployment must all be set.
func (a AzureConfig) Enabled() bool {
	return a.Endpoint != "" && a.APIKey != "" && a.Deployment != ""
}

// Load loads configuration from environment variables, after merging in
// DotEnvFile when it exists. The returned Config is always usable; the error
// reports a .env file that exists but could not be read or parsed.
func Load() (*Config, error) {
	var dotenvErr error
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		dotenvErr = fmt.Errorf("config: load %s: %w", DotEnvFile, err)
	}
	return FromEnv(), dotenvErr
}

// FromEnv reads the process environment without touching .env.
func FromEnv() *Config {
	return &Config{
		Azure: AzureConfig{
			Endpoint:   getEnv(EnvEndpoint, ""),
			APIKey:     getEnv(EnvAPIKey, ""),
			Deployment: getEnv(EnvDeployment, ""),
			APIVersion: getEnv(EnvAPIVersion, DefaultAPIVersion),
		},
		LogLevel: getEnv(EnvLogLevel, DefaultLogLevel),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
