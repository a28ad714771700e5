package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DotEnvFile is the file Load reads and SaveAzure writes.
const DotEnvFile = ".env"

// SaveAzure merges the Azure settings into the dotenv file at path, keeping
// any unrelated keys already there. Empty values are not written.
func SaveAzure(path string, a AzureConfig) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		env = map[string]string{}
	}

	for key, value := range map[string]string{
		EnvEndpoint:   a.Endpoint,
		EnvAPIKey:     a.APIKey,
		EnvDeployment: a.Deployment,
		EnvAPIVersion: a.APIVersion,
	} {
		if value != "" {
			env[key] = value
		}
	}

	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
