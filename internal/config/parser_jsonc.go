package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, locateJSONError(normalized, err)
	}
	if err := expectEOF(decoder); err != nil {
		return Config{}, nil, locateJSONError(normalized, err)
	}

	return payload.resolve(base)
}

// normalizeJSONC blanks comments and trailing commas in place. Byte offsets
// and line breaks are preserved so decoder errors keep their positions.
func normalizeJSONC(content string) (string, error) {
	buf := []byte(content)
	for i := 0; i < len(buf); {
		switch {
		case buf[i] == '"':
			i = skipJSONString(buf, i)
		case bytes.HasPrefix(buf[i:], []byte("//")):
			end := lineEnd(buf, i)
			blank(buf, i, end)
			i = end
		case bytes.HasPrefix(buf[i:], []byte("/*")):
			end := bytes.Index(buf[i+2:], []byte("*/"))
			if end < 0 {
				line, _ := offsetToLineCol(content, int64(i+1))
				return "", fmt.Errorf("line %d: unterminated block comment in JSONC", line)
			}
			end += i + 4
			blank(buf, i, end)
			i = end
		case buf[i] == ',' && closesNext(buf, i+1):
			buf[i] = ' '
			i++
		default:
			i++
		}
	}
	return string(buf), nil
}

// skipJSONString returns the index just past the string opening at start.
func skipJSONString(buf []byte, start int) int {
	for i := start + 1; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(buf)
}

// closesNext reports whether the next token after comments and whitespace
// closes an object or array.
func closesNext(buf []byte, i int) bool {
	for i < len(buf) {
		switch {
		case buf[i] == ' ' || buf[i] == '\t' || buf[i] == '\n' || buf[i] == '\r':
			i++
		case bytes.HasPrefix(buf[i:], []byte("//")):
			i = lineEnd(buf, i)
		case bytes.HasPrefix(buf[i:], []byte("/*")):
			end := bytes.Index(buf[i+2:], []byte("*/"))
			if end < 0 {
				return false
			}
			i += end + 4
		default:
			return buf[i] == '}' || buf[i] == ']'
		}
	}
	return false
}

func lineEnd(buf []byte, i int) int {
	if end := bytes.IndexAny(buf[i:], "\r\n"); end >= 0 {
		return i + end
	}
	return len(buf)
}

func blank(buf []byte, from, to int) {
	for i := from; i < to; i++ {
		switch buf[i] {
		case '\n', '\r', '\t':
		default:
			buf[i] = ' '
		}
	}
}

// expectEOF rejects anything after the first top-level value.
func expectEOF(decoder *json.Decoder) error {
	_, err := decoder.Token()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("multiple JSON values are not allowed")
	}
}

// locateJSONError prefixes decoder errors that carry an offset with a line and column.
func locateJSONError(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// offsetToLineCol converts a 1-based decoder offset into a line and column.
func offsetToLineCol(content string, offset int64) (int, int) {
	offset = min(offset, int64(len(content)))
	prefix := content[:max(offset-1, 0)]
	line := strings.Count(prefix, "\n") + 1
	col := len(prefix) - strings.LastIndexByte(prefix, '\n')
	return line, col
}
