package translate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type upperTranslator struct {
	calls atomic.Int32
	err   error
}

func (u *upperTranslator) Translate(_ context.Context, text string) (string, error) {
	u.calls.Add(1)
	if u.err != nil {
		return "", u.err
	}
	return " " + strings.ToUpper(text) + " ", nil
}

func mustPair(t *testing.T, source, target string) Pair {
	t.Helper()
	pair, ok := ParsePair(source, target)
	require.True(t, ok)
	return pair
}

func TestAdapterBuildsTranslatorOncePerPair(t *testing.T) {
	var loads atomic.Int32
	translator := &upperTranslator{}
	adapter := NewAdapter(func(context.Context, Pair) (Translator, error) {
		loads.Add(1)
		return translator, nil
	}, Options{})

	enES := mustPair(t, "en", "es")
	enFR := mustPair(t, "en", "fr")

	for range 3 {
		res := adapter.Translate(context.Background(), "hello", enES)
		require.Equal(t, "HELLO", res.Text)
		require.False(t, res.Degraded)
		require.NoError(t, res.Err)
	}
	require.Equal(t, int32(1), loads.Load())
	require.True(t, adapter.Loaded(enES))
	require.False(t, adapter.Loaded(enFR))

	adapter.Translate(context.Background(), "hello", enFR)
	require.Equal(t, int32(2), loads.Load())
	require.Equal(t, int32(4), translator.calls.Load())
}

func TestAdapterCachesLoadFailureAndReportsOnce(t *testing.T) {
	var loads atomic.Int32
	adapter := NewAdapter(func(context.Context, Pair) (Translator, error) {
		loads.Add(1)
		return nil, errors.New("model download failed")
	}, Options{Marker: "[raw] "})

	pair := mustPair(t, "en", "de")

	first := adapter.Translate(context.Background(), "guten", pair)
	require.True(t, first.Degraded)
	require.Equal(t, "[raw] guten", first.Text)
	require.ErrorIs(t, first.Err, ErrUnavailable)
	require.Contains(t, first.Err.Error(), "model download failed")

	second := adapter.Translate(context.Background(), "tag", pair)
	require.True(t, second.Degraded)
	require.Equal(t, "[raw] tag", second.Text)
	require.NoError(t, second.Err)

	require.Equal(t, int32(1), loads.Load())
	require.False(t, adapter.Loaded(pair))
}

func TestAdapterCallFailureDegradesWithoutDroppingTranslator(t *testing.T) {
	translator := &upperTranslator{err: errors.New("rate limited")}
	adapter := NewAdapter(func(context.Context, Pair) (Translator, error) {
		return translator, nil
	}, Options{})

	pair := mustPair(t, "en", "nl")
	res := adapter.Translate(context.Background(), "hello", pair)
	require.True(t, res.Degraded)
	require.Equal(t, DefaultMarker+"hello", res.Text)
	require.ErrorIs(t, res.Err, ErrUnavailable)
	require.True(t, adapter.Loaded(pair))
}

func TestAdapterSkipsEmptyTextAndIdentityPair(t *testing.T) {
	var loads atomic.Int32
	adapter := NewAdapter(func(context.Context, Pair) (Translator, error) {
		loads.Add(1)
		return &upperTranslator{}, nil
	}, Options{})

	res := adapter.Translate(context.Background(), "   ", mustPair(t, "en", "es"))
	require.Equal(t, "   ", res.Text)

	res = adapter.Translate(context.Background(), "hello", mustPair(t, "en", "english"))
	require.Equal(t, "hello", res.Text)
	require.Zero(t, loads.Load())
}

func TestAdapterWithoutLoaderDegrades(t *testing.T) {
	adapter := NewAdapter(nil, Options{})
	res := adapter.Translate(context.Background(), "hello", mustPair(t, "en", "ja"))
	require.True(t, res.Degraded)
	require.ErrorIs(t, res.Err, ErrUnavailable)
}
