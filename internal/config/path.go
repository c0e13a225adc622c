package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var configFileNames = []string{"config.jsonc", "config.yaml", "config.yml"}

// ResolvePath applies CLI/XDG/home fallback rules for the config file location.
//
// Within the config directory the first existing of config.jsonc, config.yaml,
// config.yml wins; config.jsonc is returned when none exist.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(dir, configFileNames[0]), nil
}

// DefaultSecretsPath is the dotenv file consulted when secrets_file is unset.
func DefaultSecretsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secrets.env"), nil
}

func configDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "lma"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "lma"), nil
}
