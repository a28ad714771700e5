package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvEndpoint, config.EnvAPIKey, config.EnvDeployment,
		config.EnvAPIVersion, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg := config.FromEnv()

	assert.Equal(t, config.DefaultAPIVersion, cfg.Azure.APIVersion)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Azure.Enabled())
}

func TestFromEnvReadsAzure(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvEndpoint, "https://example.openai.azure.com")
	t.Setenv(config.EnvAPIKey, "secret")
	t.Setenv(config.EnvDeployment, "gpt-4o")
	t.Setenv(config.EnvAPIVersion, "2024-02-01")

	cfg := config.FromEnv()
	assert.Equal(t, config.AzureConfig{
		Endpoint:   "https://example.openai.azure.com",
		APIKey:     "secret",
		Deployment: "gpt-4o",
		APIVersion: "2024-02-01",
	}, cfg.Azure)
	assert.True(t, cfg.Azure.Enabled())
}

func TestEnabledRequiresAllThree(t *testing.T) {
	full := config.AzureConfig{Endpoint: "e", APIKey: "k", Deployment: "d"}
	assert.True(t, full.Enabled())

	for name, a := range map[string]config.AzureConfig{
		"no endpoint":   {APIKey: "k", Deployment: "d"},
		"no key":        {Endpoint: "e", Deployment: "d"},
		"no deployment": {Endpoint: "e", APIKey: "k"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, a.Enabled())
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv.Load never overrides variables that are already set, even to
	// an empty string, so unset them for this test.
	for _, key := range []string{config.EnvEndpoint, config.EnvAPIKey, config.EnvDeployment} {
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(config.DotEnvFile, []byte(
		"AZURE_OPENAI_ENDPOINT=https://dotenv.example\nAZURE_OPENAI_KEY=k\nAZURE_OPENAI_DEPLOYMENT=dep\n",
	), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example", cfg.Azure.Endpoint)
	assert.Equal(t, "dep", cfg.Azure.Deployment)
	assert.True(t, cfg.Azure.Enabled())
}

func TestLoadWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Azure.Enabled())
}

func TestLoadReportsMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDeployment, "from-env")
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(config.DotEnvFile, []byte("NOT-A-KEY=1\n"), 0o644))

	cfg, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.DotEnvFile)
	require.NotNil(t, cfg, "environment values must still be returned")
	assert.Equal(t, "from-env", cfg.Azure.Deployment)
}

func TestSaveAzureMergesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OTHER=keep\nAZURE_OPENAI_KEY=old\n"), 0o644))

	err := config.SaveAzure(path, config.AzureConfig{
		Endpoint:   "https://example.openai.azure.com",
		APIKey:     "new",
		Deployment: "gpt-4o",
	})
	require.NoError(t, err)

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", env["OTHER"])
	assert.Equal(t, "new", env[config.EnvAPIKey])
	assert.Equal(t, "gpt-4o", env[config.EnvDeployment])
	_, hasVersion := env[config.EnvAPIVersion]
	assert.False(t, hasVersion, "empty values must not be written")
}

func TestSaveAzureCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, config.SaveAzure(path, config.AzureConfig{Endpoint: "e", APIKey: "k", Deployment: "d", APIVersion: "v"}))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		config.EnvEndpoint:   "e",
		config.EnvAPIKey:     "k",
		config.EnvDeployment: "d",
		config.EnvAPIVersion: "v",
	}, env)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
