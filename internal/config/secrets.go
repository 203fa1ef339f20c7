package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// The search API key is a secret and never lives in the versioned config
// file. It is read from the PARKSCOUT_API_KEY environment variable, or from
// an optional non-versioned "secrets.yaml" file in one of the search paths.
const (
	envPrefix     = "PARKSCOUT"
	secretsName   = "secrets"
	apiKeySetting = "api_key"
)

// LoadAPIKey resolves the search API key. Extra search paths may be supplied
// for the secrets file; the working directory is always searched.
// A missing key is reported with ErrMissingAPIKey and is fatal for any
// nearby-places operation.
func LoadAPIKey(searchPaths ...string) (string, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName(secretsName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		// The secrets file is optional; the env var alone is enough.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrReadSecretsFail, err.Error())
		}
	}

	key := strings.TrimSpace(v.GetString(apiKeySetting))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}
