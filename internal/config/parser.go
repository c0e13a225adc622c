package config

import (
	"path/filepath"
	"strings"
)

// Parse reads configuration content as JSONC or YAML.
//
// JSONC is selected when the first non-whitespace character is `{`; anything
// else is decoded as YAML.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseJSONC(content, base)
	}
	return parseYAML(content, base)
}

// ParseFile is Parse with the format forced by extension for .yaml/.yml paths.
func ParseFile(path string, content string, base Config) (Config, []Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if strings.TrimSpace(content) == "" {
			return Parse(content, base)
		}
		return parseYAML(content, base)
	default:
		return Parse(content, base)
	}
}
