package config

import (
	"fmt"
	"strings"

	"github.com/rbright/livescribe/internal/translate"
)

var logLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	a := cfg.Audio
	if a.EnergyThreshold <= 0 {
		return nil, fmt.Errorf("audio.energy_threshold must be > 0")
	}
	if a.RecordTimeout <= 0 {
		return nil, fmt.Errorf("audio.record_timeout_ms must be > 0")
	}
	if a.Pause <= 0 {
		return nil, fmt.Errorf("audio.pause_ms must be > 0")
	}
	if a.MinPhrase < 0 || a.NonSpeaking < 0 || a.Calibrate < 0 {
		return nil, fmt.Errorf("audio.min_phrase_ms, audio.non_speaking_ms and audio.calibrate_ms must be >= 0")
	}

	p := cfg.Pipeline
	if p.PhraseTimeout <= 0 {
		return nil, fmt.Errorf("pipeline.phrase_timeout_ms must be > 0")
	}
	if p.PollInterval <= 0 {
		return nil, fmt.Errorf("pipeline.poll_interval_ms must be > 0")
	}
	if p.QueueMaxChunks < 0 {
		return nil, fmt.Errorf("pipeline.queue_max_chunks must be >= 0")
	}
	if p.QueueMaxChunks > 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("pipeline.queue_max_chunks=%d: oldest audio is dropped when recognition falls behind", p.QueueMaxChunks)})
	}

	r := cfg.Recognition
	switch r.Backend {
	case BackendWhisperCPP, BackendOpenAI, BackendGRPC:
	default:
		return nil, fmt.Errorf("recognition.backend must be one of: %s, %s, %s", BackendWhisperCPP, BackendOpenAI, BackendGRPC)
	}
	if r.Backend != BackendOpenAI && r.Endpoint == "" {
		return nil, fmt.Errorf("recognition.endpoint must not be empty")
	}
	if r.Model == "" {
		return nil, fmt.Errorf("recognition.model must not be empty")
	}
	if r.Timeout <= 0 {
		return nil, fmt.Errorf("recognition.timeout_ms must be > 0")
	}
	if r.Backend == BackendGRPC && !strings.HasPrefix(r.GRPCMethod, "/") {
		return nil, fmt.Errorf("recognition.grpc_method must start with '/'")
	}
	if r.Backend == BackendOpenAI && cfg.OpenAI.APIKey == "" {
		warnings = append(warnings, Warning{Message: "recognition.backend=openai but no OpenAI API key is configured"})
	}

	t := cfg.Translation
	if t.Enable {
		source, ok := translate.LookupLanguage(t.Source)
		if !ok {
			return nil, fmt.Errorf("translation.source %q is not a supported language", t.Source)
		}
		target, ok := translate.LookupLanguage(t.Target)
		if !ok {
			return nil, fmt.Errorf("translation.target %q is not a supported language", t.Target)
		}
		if source.Code == target.Code {
			return nil, fmt.Errorf("translation.source and translation.target must differ")
		}
		if t.Model == "" {
			return nil, fmt.Errorf("translation.model must not be empty when translation.enable=true")
		}
		if cfg.OpenAI.APIKey == "" {
			warnings = append(warnings, Warning{Message: "translation is enabled without an OpenAI API key; text will pass through untranslated"})
		}
	}

	if cfg.Output.TypeCmd.Raw != "" && len(cfg.Output.TypeCmd.Argv) == 0 {
		return nil, fmt.Errorf("output.type_cmd is configured but empty")
	}

	backend := cfg.Indicator.Backend
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && cfg.Indicator.DesktopAppName == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}
