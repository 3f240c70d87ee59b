package translate

import "strings"

// Language is one supported source or target language.
type Language struct {
	Code string
	Name string
}

var languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "nl", Name: "Dutch"},
	{Code: "ja", Name: "Japanese"},
}

var languageAliases = map[string]string{"jap": "ja"}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LookupLanguage resolves a code, alias, or English name (case-insensitive).
func LookupLanguage(value string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := languageAliases[key]; ok {
		key = alias
	}
	for _, lang := range languages {
		if key == lang.Code || key == strings.ToLower(lang.Name) {
			return lang, true
		}
	}
	return Language{}, false
}

// Pair is an ordered source/target language combination.
type Pair struct {
	Source Language
	Target Language
}

func (p Pair) String() string {
	return p.Source.Code + "->" + p.Target.Code
}

// ParsePair resolves both sides of a language pair.
func ParsePair(source, target string) (Pair, bool) {
	src, ok := LookupLanguage(source)
	if !ok {
		return Pair{}, false
	}
	dst, ok := LookupLanguage(target)
	if !ok {
		return Pair{}, false
	}
	return Pair{Source: src, Target: dst}, true
}
