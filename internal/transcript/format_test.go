package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatNormalizesWhitespaceAndSentenceCase(t *testing.T) {
	t.Parallel()

	got := Format(" hello\n world.  from   livescribe ", Options{TrailingSpace: true, CapitalizeSentences: true})
	require.Equal(t, "Hello world. From livescribe ", got)
}

func TestFormatWithoutOptions(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world", Format("hello   world", Options{}))
}

func TestFormatEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Format(" \n\t", Options{TrailingSpace: true, CapitalizeSentences: true}))
}

func TestFormatCapitalizesPronounIInEnglish(t *testing.T) {
	t.Parallel()

	got := Format("when i speak i'm clearer. i think so, i.e. mostly", Options{CapitalizeSentences: true})
	require.Equal(t, "When I speak I'm clearer. I think so, i.e. mostly", got)
}

func TestFormatSkipsPronounForOtherLanguages(t *testing.T) {
	t.Parallel()

	got := Format("hola. i una casa", Options{CapitalizeSentences: true, Language: "es"})
	require.Equal(t, "Hola. I una casa", got)

	got = Format("hola y i una casa", Options{CapitalizeSentences: true, Language: "es"})
	require.Equal(t, "Hola y i una casa", got)
}

func TestFormatAbbreviationsDoNotEndSentence(t *testing.T) {
	t.Parallel()

	got := Format("ask dr. smith why? because", Options{CapitalizeSentences: true})
	require.Equal(t, "Ask dr. smith why? Because", got)
}

func TestFormatIsIdempotent(t *testing.T) {
	t.Parallel()

	opts := Options{CapitalizeSentences: true}
	first := Format("hello world. this is it", opts)
	require.Equal(t, first, Format(first, opts))
}
