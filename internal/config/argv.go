package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// splitCommand tokenizes a shell-like command line without invoking a shell.
// Quotes group words, a backslash escapes one rune, and a leading "~/" on the
// program path expands to the user's home.
func splitCommand(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv    []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range input {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	if inWord {
		argv = append(argv, word.String())
	}

	if strings.HasPrefix(argv[0], "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			argv[0] = filepath.Join(home, argv[0][2:])
		}
	}
	return argv, nil
}
