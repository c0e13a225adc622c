package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// OpenAIKeyEnv is the environment variable consulted for the remote API key.
const OpenAIKeyEnv = "OPENAI_API_KEY"

// applySecrets fills llm.openai_api_key when the config leaves it empty.
//
// The process environment wins over the secrets file. A missing default secrets
// file is silent; a missing explicit one is a warning.
func applySecrets(cfg *Config) []Warning {
	if strings.TrimSpace(cfg.LLM.OpenAIAPIKey) != "" {
		return nil
	}
	if value := strings.TrimSpace(os.Getenv(OpenAIKeyEnv)); value != "" {
		cfg.LLM.OpenAIAPIKey = value
		return nil
	}

	path := strings.TrimSpace(cfg.SecretsFile)
	explicit := path != ""
	if !explicit {
		resolved, err := DefaultSecretsPath()
		if err != nil {
			return nil
		}
		path = resolved
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return []Warning{{Message: fmt.Sprintf("secrets file %q unreadable: %v", path, err)}}
	}

	if value := strings.TrimSpace(values[OpenAIKeyEnv]); value != "" {
		cfg.LLM.OpenAIAPIKey = value
	}
	return nil
}
