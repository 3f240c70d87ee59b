package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseYAMLOverlaysDefaults(t *testing.T) {
	cfg, warnings, err := Parse(`
audio:
  fallback: usb
  calibrate_ms: 1000
pipeline:
  poll_interval_ms: 100
translation:
  enable: true
  target: fr
openai:
  api_key: sk-yaml
indicator:
  backend: desktop
http:
  listen: 127.0.0.1:9477
`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "usb", cfg.Audio.Fallback)
	require.Equal(t, time.Second, cfg.Audio.Calibrate)
	require.Equal(t, 100*time.Millisecond, cfg.Pipeline.PollInterval)
	require.True(t, cfg.Translation.Enable)
	require.Equal(t, "en", cfg.Translation.Source)
	require.Equal(t, "fr", cfg.Translation.Target)
	require.Equal(t, "desktop", cfg.Indicator.Backend)
	require.Equal(t, "127.0.0.1:9477", cfg.HTTP.Listen)
}

func TestParseYAMLRejectsUnknownField(t *testing.T) {
	_, _, err := Parse("audio:\n  volume: 11\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "yaml")
}

func TestParseYAMLRejectsMultipleDocuments(t *testing.T) {
	_, _, err := Parse("log:\n  level: info\n---\nlog:\n  level: warn\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple YAML documents")
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, _, err := Parse("  \n", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
