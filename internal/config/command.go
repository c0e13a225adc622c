package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ParseCommand splits raw into argv using shell-style quoting. A blank or
// #-prefixed value yields a command with no argv, which disables it.
// A leading ~ in the binary expands to the user's home directory.
func ParseCommand(raw string) (CommandConfig, error) {
	raw = strings.TrimSpace(raw)
	cmd := CommandConfig{Raw: raw}
	if raw == "" || strings.HasPrefix(raw, "#") {
		return cmd, nil
	}

	argv, err := splitWords(raw)
	if err != nil {
		return CommandConfig{}, err
	}
	if len(argv) > 0 {
		argv[0] = expandHome(argv[0])
	}
	cmd.Argv = argv
	return cmd, nil
}

// Binary returns the executable name, or "" for a disabled command.
func (c CommandConfig) Binary() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

func mustCommand(raw string) CommandConfig {
	cmd, err := ParseCommand(raw)
	if err != nil {
		panic(err)
	}
	return cmd
}

// splitWords tokenizes s. Backslash is literal inside single quotes and
// escapes the next rune elsewhere; "" produces an empty argument.
func splitWords(s string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		started bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, started = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '\'' || r == '"':
			quote, started = r, true
		case unicode.IsSpace(r):
			if started {
				words = append(words, word.String())
				word.Reset()
				started = false
			}
		default:
			word.WriteRune(r)
			started = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("command %q ends with a dangling backslash", s)
	}
	if quote != 0 {
		return nil, fmt.Errorf("command %q has an unterminated %c quote", s, quote)
	}
	if started {
		words = append(words, word.String())
	}
	return words, nil
}

func expandHome(bin string) string {
	if bin != "~" && !strings.HasPrefix(bin, "~/") {
		return bin
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return bin
	}
	return filepath.Join(home, strings.TrimPrefix(bin, "~"))
}
