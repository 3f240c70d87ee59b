package config

import (
	"strings"

	"github.com/rbright/livescribe/internal/translate"
)

// TranslationPair returns the configured pair, or nil when translation is
// disabled or either side is not a known language.
func (c Config) TranslationPair() *translate.Pair {
	if !c.Translation.Enable {
		return nil
	}
	pair, ok := translate.ParsePair(c.Translation.Source, c.Translation.Target)
	if !ok {
		return nil
	}
	return &pair
}

// RecognitionLanguage is the hint passed to the recognizer: the explicit
// recognition.language, else the translation source when translating.
func (c Config) RecognitionLanguage() string {
	raw := strings.TrimSpace(c.Recognition.Language)
	if raw == "" {
		if pair := c.TranslationPair(); pair != nil {
			return pair.Source.Code
		}
		return ""
	}
	if lang, ok := translate.LookupLanguage(raw); ok {
		return lang.Code
	}
	return raw
}
