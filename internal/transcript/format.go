package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

// Options controls how finalized text is shaped before it is committed.
type Options struct {
	TrailingSpace       bool
	CapitalizeSentences bool
	// Language of the text; pronoun fixes only apply to English.
	Language string
}

var (
	pronounIPattern = regexp.MustCompile(`\bi\b`)
	// Lowercase tokens that end in a period without ending the sentence.
	nonTerminalAbbreviations = map[string]struct{}{
		"dr": {}, "mr": {}, "mrs": {}, "ms": {}, "prof": {}, "st": {},
		"e.g": {}, "i.e": {}, "cf": {}, "vs": {}, "approx": {},
	}
)

// Format collapses whitespace and applies the configured normalization.
func Format(text string, opts Options) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		normalized = capitalizeSentenceStarts(normalized)
		if isEnglish(opts.Language) {
			normalized = capitalizePronounI(normalized)
		}
	}

	if opts.TrailingSpace {
		return normalized + " "
	}
	return normalized
}

func isEnglish(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "" || strings.HasPrefix(lang, "en")
}

func capitalizeSentenceStarts(text string) string {
	words := strings.Split(text, " ")
	start := true
	for i, word := range words {
		if start {
			words[i] = upperFirstLetter(word)
		}
		start = endsSentence(word)
	}
	return strings.Join(words, " ")
}

func upperFirstLetter(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			return string(runes)
		}
		if unicode.IsDigit(r) {
			return word
		}
	}
	return word
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]}”’`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '!', '?':
		return true
	case '.':
		token := strings.ToLower(strings.TrimRight(trimmed, "."))
		if _, ok := nonTerminalAbbreviations[token]; ok {
			return false
		}
		return !strings.HasSuffix(trimmed, "...")
	default:
		return false
	}
}

// capitalizePronounI upper-cases the standalone word "i", leaving dotted
// abbreviations such as "i.e." alone.
func capitalizePronounI(text string) string {
	matches := pronounIPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		out.WriteString(text[last:start])
		if end+1 < len(text) && text[end] == '.' && isLetterByte(text[end+1]) {
			out.WriteString(text[start:end])
		} else {
			out.WriteString("I")
		}
		last = end
	}
	out.WriteString(text[last:])
	return out.String()
}

func isLetterByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
