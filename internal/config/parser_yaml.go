package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

func parseYAML(content string, base Config) (Config, []Warning, error) {
	decoder := yaml.NewDecoder(strings.NewReader(content))
	decoder.KnownFields(true)

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return fileConfig{}.resolve(base)
		}
		return Config{}, nil, fmt.Errorf("yaml: %w", err)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return Config{}, nil, fmt.Errorf("yaml: %w", err)
		}
		return Config{}, nil, fmt.Errorf("multiple YAML documents are not allowed")
	}

	return payload.resolve(base)
}
