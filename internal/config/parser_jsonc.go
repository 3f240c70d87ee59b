package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

func decodeJSONC(content string) (fileConfig, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return fileConfig{}, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		return fileConfig{}, locateJSONError(normalized, err)
	}

	var extra json.RawMessage
	switch err := decoder.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err == nil:
		return fileConfig{}, errors.New("multiple JSON values are not allowed")
	default:
		return fileConfig{}, locateJSONError(normalized, err)
	}
	return payload, nil
}

// normalizeJSONC blanks out comments and trailing commas with spaces so that
// byte offsets in decode errors still point into the original file.
func normalizeJSONC(content string) (string, error) {
	src := []byte(content)
	out := make([]byte, len(src))
	copy(out, src)

	const (
		code = iota
		str
		lineComment
		blockComment
	)
	mode := code
	lastComma := -1

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch mode {
		case str:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				mode = code
			}
		case lineComment:
			if ch == '\n' || ch == '\r' {
				mode = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				mode = code
			} else if ch != '\n' && ch != '\r' && ch != '\t' {
				out[i] = ' '
			}
		default:
			switch {
			case ch == '"':
				mode = str
				lastComma = -1
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				out[i], out[i+1] = ' ', ' '
				i++
				mode = lineComment
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				out[i], out[i+1] = ' ', ' '
				i++
				mode = blockComment
			case ch == ',':
				lastComma = i
			case ch == '}' || ch == ']':
				if lastComma >= 0 {
					out[lastComma] = ' '
				}
				lastComma = -1
			case isJSONWhitespace(ch):
			default:
				lastComma = -1
			}
		}
	}

	if mode == blockComment {
		return "", errors.New("unterminated block comment in JSONC")
	}
	return string(out), nil
}

func isJSONWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t'
}

func locateJSONError(content string, err error) error {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return err
	}

	line, col := lineAndColumn(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// lineAndColumn maps a decoder offset (bytes consumed) to a 1-based position.
func lineAndColumn(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	end := int(offset) - 1
	if end > len(content) {
		end = len(content)
	}

	before := content[:end]
	line := strings.Count(before, "\n") + 1
	col := end - strings.LastIndexByte(before, '\n')
	return line, col
}
